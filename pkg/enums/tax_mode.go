package enums

// TaxMode records which GST split an invoice was computed under.
type TaxMode string

const (
	TaxModeIntraState TaxMode = "intra_state"
	TaxModeInterState TaxMode = "inter_state"
)
