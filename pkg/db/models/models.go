package models

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&CorporateClient{},
		&MedicineUser{},
		&CourierBoy{},
		&Shipment{},
		&MedicineBooking{},
		&AssignmentEntry{},
		&AssignmentOrder{},
		&OCLCharge{},
		&InvoiceRecord{},
	}
}
