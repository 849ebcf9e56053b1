package settlements

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

const pdfDateLayout = "02 Jan 2006"

// RenderInvoicePDF lays out an invoice as an A4 PDF.
func RenderInvoicePDF(invoice *Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("invoice required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, invoice.Biller.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(18,
		col.New(8).Add(
			text.New(invoice.Biller.Address, props.Text{Size: 9}),
			text.New("GSTIN: "+invoice.Biller.GSTNumber, props.Text{Size: 9, Top: 4}),
			text.New(invoice.Biller.Email, props.Text{Size: 9, Top: 8}),
		),
		col.New(4).Add(
			text.New("Invoice number: "+invoice.Number, props.Text{Size: 9, Align: align.Right}),
			text.New("Date of issue: "+invoice.IssueDate.Format(pdfDateLayout), props.Text{Size: 9, Top: 4, Align: align.Right}),
			text.New("Financial year: "+invoice.FinancialYear, props.Text{Size: 9, Top: 8, Align: align.Right}),
			text.New("Period: "+invoice.PeriodStart.Format(pdfDateLayout)+" - "+invoice.PeriodEnd.Format(pdfDateLayout), props.Text{Size: 9, Top: 12, Align: align.Right}),
		),
	)

	m.AddRow(26,
		col.New(12).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BillTo.Name, props.Text{Top: 5}),
			text.New(invoice.BillTo.Address, props.Text{Size: 9, Top: 10}),
			text.New("GSTIN: "+invoice.BillTo.GSTNumber+"   State: "+invoice.BillTo.State, props.Text{Size: 9, Top: 14}),
			text.New(invoice.BillTo.Contact+"  "+invoice.BillTo.Email, props.Text{Size: 9, Top: 18}),
		),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 8}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}
	m.AddRow(8,
		text.NewCol(2, "Consignment", header),
		text.NewCol(2, "Date", header),
		text.NewCol(3, "Route", header),
		text.NewCol(1, "Weight", headerRight),
		text.NewCol(2, "Freight", headerRight),
		text.NewCol(1, "AWB", headerRight),
		text.NewCol(1, "Total", headerRight),
	)

	cell := props.Text{Size: 8}
	cellRight := props.Text{Size: 8, Align: align.Right}
	for _, item := range invoice.Items {
		m.AddRow(7,
			text.NewCol(2, fmt.Sprintf("%d", item.ConsignmentNumber), cell),
			text.NewCol(2, item.BookingDate.Format(pdfDateLayout), cell),
			text.NewCol(3, item.Origin+" - "+item.Destination, cell),
			text.NewCol(1, item.Weight.String(), cellRight),
			text.NewCol(2, money(item.FreightCharge), cellRight),
			text.NewCol(1, money(item.AWBCharge), cellRight),
			text.NewCol(1, money(item.Total), cellRight),
		)
	}

	s := invoice.Summary
	totals := [][2]string{
		{"Total amount", money(s.TotalAmount)},
		{"Fuel charge", money(s.FuelCharge)},
		{"Subtotal", money(s.SubtotalAfterFuel)},
	}
	if s.TaxMode == enums.TaxModeIntraState {
		totals = append(totals, [2]string{"CGST", money(s.CGST)}, [2]string{"SGST", money(s.SGST)})
	} else {
		totals = append(totals, [2]string{"IGST", money(s.IGST)})
	}
	for _, row := range totals {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, row[0], props.Text{Size: 9}),
			text.NewCol(2, row[1], props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(9,
		col.New(8),
		text.NewCol(2, "Grand total", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(2, money(s.GrandTotal), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(12, "Amount in words: "+invoice.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic, Top: 3}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
