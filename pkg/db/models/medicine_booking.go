package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/types"
)

// MedicineBooking is a medicine consignment booked by a MedicineUser.
type MedicineBooking struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	MedicineUserID    uuid.UUID           `gorm:"column:medicine_user_id;type:uuid;not null"`
	ConsignmentNumber int64               `gorm:"column:consignment_number;not null"`
	BookingReference  string              `gorm:"column:booking_reference"`
	BookingDate       time.Time           `gorm:"column:booking_date;not null"`
	Weight            decimal.Decimal     `gorm:"column:weight;type:numeric(12,3);not null;default:0"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Commission        decimal.Decimal     `gorm:"column:commission;type:numeric(12,2);not null;default:0"`
	SettlementStatus  enums.PaymentStatus `gorm:"column:settlement_status;not null;default:'unpaid'"`
	OriginData        types.JSONMap       `gorm:"column:origin_data;type:jsonb"`
	DestinationData   types.JSONMap       `gorm:"column:destination_data;type:jsonb"`
	ChargesData       types.JSONMap       `gorm:"column:charges_data;type:jsonb"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (MedicineBooking) TableName() string { return "medicine_bookings" }
