package settlements

import (
	"fmt"
	"strings"
	"time"

	"github.com/oclservices/ocl-backend/pkg/config"
)

// Party is a name/address block printed on the invoice.
type Party struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	GSTNumber string `json:"gst_number,omitempty"`
	State     string `json:"state"`
	Contact   string `json:"contact,omitempty"`
	Email     string `json:"email,omitempty"`
}

// BillerFromConfig builds the issuing party from the billing config.
func BillerFromConfig(cfg config.BillingConfig) Party {
	return Party{
		Name:      cfg.BillerName,
		Address:   cfg.BillerAddress,
		GSTNumber: cfg.BillerGSTIN,
		State:     cfg.BillerState,
		Contact:   cfg.BillerPhone,
		Email:     cfg.BillerEmail,
	}
}

// InvoiceInput is everything RenderInvoice needs. Zero IssueDate means now;
// zero PeriodStart/PeriodEnd are derived from the bill dates.
type InvoiceInput struct {
	Number      string
	Items       []BillLine
	BillTo      Party
	Biller      Party
	Rates       Rates
	IssueDate   time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Invoice is the renderable consolidated invoice.
type Invoice struct {
	Number        string     `json:"invoice_number"`
	IssueDate     time.Time  `json:"issue_date"`
	FinancialYear string     `json:"financial_year"`
	PeriodStart   time.Time  `json:"period_start"`
	PeriodEnd     time.Time  `json:"period_end"`
	Biller        Party      `json:"biller"`
	BillTo        Party      `json:"bill_to"`
	Items         []BillLine `json:"items"`
	Summary       Summary    `json:"summary"`
	AmountInWords string     `json:"amount_in_words"`
	Provisional   bool       `json:"provisional"`
}

// RenderInvoice builds the invoice from the bill lines. The summary is always
// recomputed from Items so the printed totals cannot drift from the lines.
func RenderInvoice(input InvoiceInput) (*Invoice, error) {
	if strings.TrimSpace(input.Number) == "" {
		return nil, fmt.Errorf("invoice number required")
	}
	if strings.TrimSpace(input.BillTo.Name) == "" {
		return nil, fmt.Errorf("bill-to name required")
	}
	if input.Rates.BillerState == "" {
		input.Rates.BillerState = input.Biller.State
	}

	issue := input.IssueDate
	if issue.IsZero() {
		issue = time.Now().UTC()
	}
	start, end := invoicePeriod(input.Items, issue, input.PeriodStart, input.PeriodEnd)
	if end.Before(start) {
		return nil, fmt.Errorf("invoice period ends before it starts")
	}

	items := input.Items
	if items == nil {
		items = []BillLine{}
	}
	summary := Summarize(items, input.BillTo.State, input.Rates)
	return &Invoice{
		Number:        input.Number,
		IssueDate:     issue,
		FinancialYear: FinancialYear(issue),
		PeriodStart:   start,
		PeriodEnd:     end,
		Biller:        input.Biller,
		BillTo:        input.BillTo,
		Items:         items,
		Summary:       summary,
		AmountInWords: RupeesInWords(summary.GrandTotal),
	}, nil
}

// invoicePeriod fills missing bounds from the earliest/latest booking date, or
// the issue month when there are no lines.
func invoicePeriod(items []BillLine, issue, start, end time.Time) (time.Time, time.Time) {
	if !start.IsZero() && !end.IsZero() {
		return start, end
	}
	var first, last time.Time
	for _, item := range items {
		if first.IsZero() || item.BookingDate.Before(first) {
			first = item.BookingDate
		}
		if last.IsZero() || item.BookingDate.After(last) {
			last = item.BookingDate
		}
	}
	if first.IsZero() {
		first, last = monthBounds(issue.Year(), issue.Month(), issue.Location())
	}
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	return start, end
}

// monthBounds returns the first and last calendar day of the month.
func monthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first, last
}
