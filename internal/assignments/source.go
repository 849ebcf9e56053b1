package assignments

import (
	"strings"

	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
)

// Contact is the requester snapshot copied onto an entry.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Source identifies who an entry is raised for. Each assignment type has its own
// constructor that only accepts the fields that type needs, so a Source value is
// always internally consistent.
type Source struct {
	kind           enums.AssignmentType
	corporateID    uuid.UUID
	medicineUserID uuid.UUID
	requester      Contact
}

// NewCorporateSource builds the source for a corporate client's freight shipments.
func NewCorporateSource(corporateID uuid.UUID) (Source, error) {
	if corporateID == uuid.Nil {
		return Source{}, pkgerrors.New(pkgerrors.CodeValidation, "corporate id is required for corporate assignments")
	}
	return Source{kind: enums.AssignmentTypeCorporate, corporateID: corporateID}, nil
}

// NewMedicineSource builds the source for a medicine operator's bookings.
func NewMedicineSource(medicineUserID uuid.UUID) (Source, error) {
	if medicineUserID == uuid.Nil {
		return Source{}, pkgerrors.New(pkgerrors.CodeValidation, "medicine user id is required for medicine assignments")
	}
	return Source{kind: enums.AssignmentTypeMedicine, medicineUserID: medicineUserID}, nil
}

// NewOfficeUserSource builds the source for shipments booked at the office counter.
func NewOfficeUserSource(name, email, phone string) (Source, error) {
	return newRequesterSource(enums.AssignmentTypeOfficeUser, name, email, phone)
}

// NewCourierBoySource builds the source for shipments booked by a courier in the field.
func NewCourierBoySource(name, email, phone string) (Source, error) {
	return newRequesterSource(enums.AssignmentTypeCourierBoy, name, email, phone)
}

func newRequesterSource(kind enums.AssignmentType, name, email, phone string) (Source, error) {
	contact := Contact{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	if contact.Name == "" {
		return Source{}, pkgerrors.New(pkgerrors.CodeValidation, "requester name is required").
			WithDetails(map[string]any{"type": kind})
	}
	return Source{kind: kind, requester: contact}, nil
}

// Type returns the assignment type this source belongs to.
func (s Source) Type() enums.AssignmentType {
	return s.kind
}

// CorporateID returns the corporate reference for corporate sources.
func (s Source) CorporateID() (uuid.UUID, bool) {
	return s.corporateID, s.kind == enums.AssignmentTypeCorporate
}

// MedicineUserID returns the medicine operator reference for medicine sources.
func (s Source) MedicineUserID() (uuid.UUID, bool) {
	return s.medicineUserID, s.kind == enums.AssignmentTypeMedicine
}

// Requester returns the contact captured by office-user and courier-boy sources.
func (s Source) Requester() Contact {
	return s.requester
}

// IsZero reports whether the source was built by a constructor.
func (s Source) IsZero() bool {
	return s.kind == ""
}

// OrderRef points at exactly one order record: a freight shipment or a medicine booking.
type OrderRef struct {
	shipmentID        uuid.UUID
	medicineBookingID uuid.UUID
}

// NewOrderRef validates that exactly one of the two references is supplied.
func NewOrderRef(shipmentID, medicineBookingID *uuid.UUID) (OrderRef, error) {
	hasShipment := shipmentID != nil && *shipmentID != uuid.Nil
	hasBooking := medicineBookingID != nil && *medicineBookingID != uuid.Nil
	switch {
	case hasShipment && hasBooking:
		return OrderRef{}, pkgerrors.New(pkgerrors.CodeValidation, "order item must reference a shipment or a medicine booking, not both")
	case hasShipment:
		return OrderRef{shipmentID: *shipmentID}, nil
	case hasBooking:
		return OrderRef{medicineBookingID: *medicineBookingID}, nil
	default:
		return OrderRef{}, pkgerrors.New(pkgerrors.CodeValidation, "order item must reference a shipment or a medicine booking")
	}
}

// ShipmentRef references a freight shipment.
func ShipmentRef(id uuid.UUID) OrderRef {
	return OrderRef{shipmentID: id}
}

// MedicineBookingRef references a medicine booking.
func MedicineBookingRef(id uuid.UUID) OrderRef {
	return OrderRef{medicineBookingID: id}
}

// ShipmentID returns the shipment reference when this ref points at a shipment.
func (r OrderRef) ShipmentID() (uuid.UUID, bool) {
	return r.shipmentID, r.shipmentID != uuid.Nil
}

// MedicineBookingID returns the booking reference when this ref points at a medicine booking.
func (r OrderRef) MedicineBookingID() (uuid.UUID, bool) {
	return r.medicineBookingID, r.medicineBookingID != uuid.Nil
}

func (r OrderRef) key() uuid.UUID {
	if r.shipmentID != uuid.Nil {
		return r.shipmentID
	}
	return r.medicineBookingID
}
