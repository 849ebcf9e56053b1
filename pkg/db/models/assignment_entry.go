package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/types"
)

// AssignedCourier is the courier snapshot copied onto an entry at assignment time.
type AssignedCourier struct {
	CourierBoyID *uuid.UUID `gorm:"column:courier_boy_id;type:uuid" json:"courier_boy_id,omitempty"`
	Name         string     `gorm:"column:courier_name" json:"courier_name"`
	Phone        string     `gorm:"column:courier_phone" json:"courier_phone"`
	Email        string     `gorm:"column:courier_email" json:"courier_email"`
	Area         string     `gorm:"column:courier_area" json:"courier_area"`
}

// IsSet reports whether a courier has been attached.
func (c AssignedCourier) IsSet() bool {
	return c.CourierBoyID != nil
}

// AssignmentEntry groups one or more orders handed to a courier for pickup and/or delivery.
type AssignmentEntry struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Type            enums.AssignmentType   `gorm:"column:type;not null" json:"type"`
	Work            enums.AssignmentWork   `gorm:"column:work;not null" json:"work"`
	CorporateID     *uuid.UUID             `gorm:"column:corporate_id;type:uuid" json:"corporate_id,omitempty"`
	MedicineUserID  *uuid.UUID             `gorm:"column:medicine_user_id;type:uuid" json:"medicine_user_id,omitempty"`
	SourceName      string                 `gorm:"column:source_name" json:"source_name"`
	SourceEmail     string                 `gorm:"column:source_email" json:"source_email"`
	SourcePhone     string                 `gorm:"column:source_phone" json:"source_phone"`
	Status          enums.AssignmentStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	AssignedCourier AssignedCourier        `gorm:"embedded" json:"courier"`
	AssignedBy      string                 `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedAt      time.Time              `gorm:"column:assigned_at;not null" json:"assigned_at"`
	StartedAt       *time.Time             `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time             `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CancelledAt     *time.Time             `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	Notes           *string                `gorm:"column:notes" json:"notes,omitempty"`
	Version         int                    `gorm:"column:version;not null;default:1" json:"version"`
	Orders          []AssignmentOrder      `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"orders"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AssignmentEntry) TableName() string { return "assignment_entries" }

// AssignmentOrder is one line item of an entry. Exactly one of ShipmentID and
// MedicineBookingID is set.
type AssignmentOrder struct {
	ID                uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EntryID           uuid.UUID     `gorm:"column:entry_id;type:uuid;not null" json:"entry_id"`
	Position          int           `gorm:"column:position;not null" json:"position"`
	ShipmentID        *uuid.UUID    `gorm:"column:shipment_id;type:uuid" json:"shipment_id,omitempty"`
	MedicineBookingID *uuid.UUID    `gorm:"column:medicine_booking_id;type:uuid" json:"medicine_booking_id,omitempty"`
	ConsignmentNumber int64         `gorm:"column:consignment_number" json:"consignment_number"`
	BookingReference  string        `gorm:"column:booking_reference" json:"booking_reference"`
	OriginData        types.JSONMap `gorm:"column:origin_data;type:jsonb" json:"origin_data"`
	DestinationData   types.JSONMap `gorm:"column:destination_data;type:jsonb" json:"destination_data"`
	ShipmentData      types.JSONMap `gorm:"column:shipment_data;type:jsonb" json:"shipment_data"`
	InvoiceData       types.JSONMap `gorm:"column:invoice_data;type:jsonb" json:"invoice_data"`
	ChargesData       types.JSONMap `gorm:"column:charges_data;type:jsonb" json:"charges_data"`
	CreatedAt         time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AssignmentOrder) TableName() string { return "assignment_orders" }
