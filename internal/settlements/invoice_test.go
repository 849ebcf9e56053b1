package settlements

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

func sampleLines(rates Rates) []BillLine {
	first := line("400", rates)
	first.ShipmentID = uuid.New()
	first.ConsignmentNumber = 871002
	first.BookingDate = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	first.Origin = "Guwahati, Assam"
	first.Destination = "Shillong, Meghalaya"

	second := line("600", rates)
	second.ShipmentID = uuid.New()
	second.ConsignmentNumber = 871001
	second.BookingDate = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	return []BillLine{second, first}
}

func TestRenderInvoice(t *testing.T) {
	rates := DefaultRates()
	issued := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	invoice, err := RenderInvoice(InvoiceInput{
		Number:    "OCL/2025-26/20250402-0001",
		Items:     sampleLines(rates),
		BillTo:    Party{Name: "Acme Traders", State: "Assam", GSTNumber: "18AAACA0000A1Z5"},
		Biller:    Party{Name: "OCL Services", State: "Assam"},
		Rates:     rates,
		IssueDate: issued,
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-26", invoice.FinancialYear)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), invoice.PeriodStart)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), invoice.PeriodEnd)
	assert.Equal(t, enums.TaxModeIntraState, invoice.Summary.TaxMode)
	assertMoney(t, "1357.00", invoice.Summary.GrandTotal, "grandTotal")
	assert.Equal(t, "One Thousand Three Hundred Fifty Seven Rupees Only", invoice.AmountInWords)
	assert.False(t, invoice.Provisional)
}

func TestRenderInvoiceDefaults(t *testing.T) {
	invoice, err := RenderInvoice(InvoiceInput{
		Number:    "OCL-1",
		BillTo:    Party{Name: "Acme Traders", State: "Bihar"},
		Biller:    Party{Name: "OCL Services", State: "Assam"},
		Rates:     Rates{Fuel: decimal.RequireFromString("0.10"), GST: decimal.RequireFromString("0.18")},
		IssueDate: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotNil(t, invoice.Items)
	assert.Empty(t, invoice.Items)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), invoice.PeriodStart)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), invoice.PeriodEnd)
	assert.Equal(t, enums.TaxModeInterState, invoice.Summary.TaxMode)
	assert.Equal(t, "Zero Rupees Only", invoice.AmountInWords)
}

func TestRenderInvoiceRejectsIncompleteInput(t *testing.T) {
	_, err := RenderInvoice(InvoiceInput{BillTo: Party{Name: "Acme"}})
	assert.Error(t, err)

	_, err = RenderInvoice(InvoiceInput{Number: "OCL-1"})
	assert.Error(t, err)

	_, err = RenderInvoice(InvoiceInput{
		Number:      "OCL-1",
		BillTo:      Party{Name: "Acme"},
		PeriodStart: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}

func TestRenderInvoicePDF(t *testing.T) {
	rates := DefaultRates()
	invoice, err := RenderInvoice(InvoiceInput{
		Number:    "OCL/2025-26/20250402-0001",
		Items:     sampleLines(rates),
		BillTo:    Party{Name: "Acme Traders", State: "Maharashtra"},
		Biller:    Party{Name: "OCL Services", State: "Assam"},
		Rates:     rates,
		IssueDate: time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	doc, err := RenderInvoicePDF(invoice)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	_, err = RenderInvoicePDF(nil)
	assert.Error(t, err)
}
