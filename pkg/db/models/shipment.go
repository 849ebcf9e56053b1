package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/types"
)

// Shipment is a corporate freight booking.
type Shipment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ConsignmentNumber int64               `gorm:"column:consignment_number;not null;uniqueIndex"`
	BookingReference  string              `gorm:"column:booking_reference"`
	CorporateID       uuid.UUID           `gorm:"column:corporate_id;type:uuid;not null"`
	BookingDate       time.Time           `gorm:"column:booking_date;not null"`
	ServiceType       string              `gorm:"column:service_type"`
	ChargeableWeight  decimal.Decimal     `gorm:"column:chargeable_weight;type:numeric(12,3);not null;default:0"`
	FreightCharge     decimal.Decimal     `gorm:"column:freight_charge;type:numeric(12,2);not null;default:0"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:'unpaid'"`
	InvoiceNumber     *string             `gorm:"column:invoice_number"`
	OriginData        types.JSONMap       `gorm:"column:origin_data;type:jsonb"`
	DestinationData   types.JSONMap       `gorm:"column:destination_data;type:jsonb"`
	ShipmentData      types.JSONMap       `gorm:"column:shipment_data;type:jsonb"`
	InvoiceData       types.JSONMap       `gorm:"column:invoice_data;type:jsonb"`
	ChargesData       types.JSONMap       `gorm:"column:charges_data;type:jsonb"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shipment) TableName() string { return "shipments" }
