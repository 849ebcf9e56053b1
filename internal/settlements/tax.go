package settlements

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/config"
	"github.com/oclservices/ocl-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Rates are the billing constants applied to every corporate invoice.
type Rates struct {
	BillerState string
	Fuel        decimal.Decimal
	GST         decimal.Decimal
	AWB         decimal.Decimal
}

// DefaultRates is the OCL tariff: 10% fuel, 18% GST, ₹50 AWB, billed from Assam.
func DefaultRates() Rates {
	return Rates{
		BillerState: "Assam",
		Fuel:        decimal.RequireFromString("0.10"),
		GST:         decimal.RequireFromString("0.18"),
		AWB:         decimal.NewFromInt(50),
	}
}

// RatesFromConfig reads the tariff from the billing config.
func RatesFromConfig(cfg config.BillingConfig) Rates {
	fuel, gst, awb := cfg.Rates()
	return Rates{
		BillerState: cfg.BillerState,
		Fuel:        fuel,
		GST:         gst,
		AWB:         awb,
	}
}

// Summary is the aggregate of a set of bill lines after fuel and GST.
type Summary struct {
	TotalBills        int             `json:"total_bills"`
	TotalWeight       decimal.Decimal `json:"total_weight"`
	TotalFreight      decimal.Decimal `json:"total_freight"`
	TotalAWB          decimal.Decimal `json:"total_awb"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	FuelCharge        decimal.Decimal `json:"fuel_charge"`
	SubtotalAfterFuel decimal.Decimal `json:"subtotal_after_fuel"`
	CGST              decimal.Decimal `json:"cgst"`
	SGST              decimal.Decimal `json:"sgst"`
	IGST              decimal.Decimal `json:"igst"`
	GSTAmount         decimal.Decimal `json:"gst_amount"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	TaxMode           enums.TaxMode   `json:"tax_mode"`
}

// TaxModeFor picks the GST split. Same state means CGST+SGST, anything else IGST.
func TaxModeFor(billerState, entityState string) enums.TaxMode {
	if strings.EqualFold(strings.TrimSpace(billerState), strings.TrimSpace(entityState)) {
		return enums.TaxModeIntraState
	}
	return enums.TaxModeInterState
}

// Summarize totals the lines and applies fuel and GST for an entity in entityState.
func Summarize(lines []BillLine, entityState string, rates Rates) Summary {
	summary := Summary{TotalBills: len(lines)}
	for _, line := range lines {
		summary.TotalWeight = summary.TotalWeight.Add(line.Weight)
		summary.TotalFreight = summary.TotalFreight.Add(line.FreightCharge)
		summary.TotalAWB = summary.TotalAWB.Add(line.AWBCharge)
		summary.TotalAmount = summary.TotalAmount.Add(line.Total)
	}
	applyTax(&summary, entityState, rates)
	return summary
}

func applyTax(s *Summary, entityState string, rates Rates) {
	s.FuelCharge = s.TotalFreight.Mul(rates.Fuel).Round(2)
	s.SubtotalAfterFuel = s.TotalAmount.Add(s.FuelCharge).Round(2)
	s.TaxMode = TaxModeFor(rates.BillerState, entityState)

	s.CGST, s.SGST, s.IGST = decimal.Zero, decimal.Zero, decimal.Zero
	if s.TaxMode == enums.TaxModeIntraState {
		half := s.SubtotalAfterFuel.Mul(rates.GST).Div(decimal.NewFromInt(2)).Round(2)
		s.CGST = half
		s.SGST = half
	} else {
		s.IGST = s.SubtotalAfterFuel.Mul(rates.GST).Round(2)
	}
	s.GSTAmount = s.CGST.Add(s.SGST).Add(s.IGST)
	s.GrandTotal = s.SubtotalAfterFuel.Add(s.GSTAmount)
}

// MedicineTotals is the OCL reconciliation for a medicine user's month.
type MedicineTotals struct {
	Total            decimal.Decimal `json:"total"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	OCLCharge        decimal.Decimal `json:"ocl_charge"`
	OCLChargeManual  bool            `json:"ocl_charge_manual"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ReconcileMedicine derives the OCL charge and remaining balance. A nil or zero
// manual charge falls back to total minus commission.
func ReconcileMedicine(total, commission decimal.Decimal, manual *decimal.Decimal) MedicineTotals {
	out := MedicineTotals{
		Total:           total.Round(2),
		TotalCommission: commission.Round(2),
	}
	if manual != nil && !manual.IsZero() {
		out.OCLCharge = manual.Round(2)
		out.OCLChargeManual = true
	} else {
		out.OCLCharge = out.Total.Sub(out.TotalCommission)
	}
	out.RemainingBalance = out.Total.Sub(out.OCLCharge)
	return out
}
