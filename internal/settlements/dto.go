package settlements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

// PeriodQuery selects which orders are aggregated. Month/Year and From/To are
// alternatives; an empty query means every unpaid order.
type PeriodQuery struct {
	From  *time.Time
	To    *time.Time
	Month int
	Year  int
}

// Period is a resolved, date-inclusive booking window.
type Period struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	UnpaidOnly bool       `json:"unpaid_only"`
}

// BillLine is one shipment as billed.
type BillLine struct {
	ShipmentID        uuid.UUID           `json:"shipment_id"`
	ConsignmentNumber int64               `json:"consignment_number"`
	BookingReference  string              `json:"booking_reference,omitempty"`
	BookingDate       time.Time           `json:"booking_date"`
	Origin            string              `json:"origin"`
	Destination       string              `json:"destination"`
	ServiceType       string              `json:"service_type"`
	Weight            decimal.Decimal     `json:"weight"`
	FreightCharge     decimal.Decimal     `json:"freight_charge"`
	AWBCharge         decimal.Decimal     `json:"awb_charge"`
	Total             decimal.Decimal     `json:"total"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	InvoiceNumber     *string             `json:"invoice_number,omitempty"`
}

// CorporateBills is the aggregation result for one corporate client.
type CorporateBills struct {
	CorporateID uuid.UUID  `json:"corporate_id"`
	CompanyName string     `json:"company_name"`
	State       string     `json:"state"`
	Period      Period     `json:"period"`
	Items       []BillLine `json:"items"`
	Summary     Summary    `json:"summary"`
}

// MedicineLine is one medicine booking in a monthly settlement.
type MedicineLine struct {
	BookingID         uuid.UUID           `json:"booking_id"`
	ConsignmentNumber int64               `json:"consignment_number"`
	BookingReference  string              `json:"booking_reference,omitempty"`
	BookingDate       time.Time           `json:"booking_date"`
	Origin            string              `json:"origin"`
	Destination       string              `json:"destination"`
	Weight            decimal.Decimal     `json:"weight"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	Commission        decimal.Decimal     `json:"commission"`
	SettlementStatus  enums.PaymentStatus `json:"settlement_status"`
}

// MedicineSettlement is the monthly reconciliation for a medicine user.
type MedicineSettlement struct {
	MedicineUserID uuid.UUID       `json:"medicine_user_id"`
	Name           string          `json:"name"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	TotalBookings  int             `json:"total_bookings"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	Items          []MedicineLine  `json:"items"`
	MedicineTotals
}

// OCLChargeInput sets the manual OCL charge for a month.
type OCLChargeInput struct {
	MedicineUserID uuid.UUID
	Month          int
	Year           int
	Amount         decimal.Decimal
	Actor          string
}

// InvoiceRequest asks for an invoice over a corporate client's bills.
type InvoiceRequest struct {
	CorporateID uuid.UUID
	Period      PeriodQuery
	IssueDate   *time.Time
	Actor       string
}
