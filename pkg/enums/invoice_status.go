package enums

// InvoiceStatus tracks an issued corporate invoice.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPaid
}
