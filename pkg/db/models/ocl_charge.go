package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OCLCharge is the manually entered OCL charge for a medicine user's month.
type OCLCharge struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	MedicineUserID uuid.UUID       `gorm:"column:medicine_user_id;type:uuid;not null;uniqueIndex:medicine_ocl_charges_period_idx" json:"medicine_user_id"`
	Month          int             `gorm:"column:month;not null;uniqueIndex:medicine_ocl_charges_period_idx" json:"month"`
	Year           int             `gorm:"column:year;not null;uniqueIndex:medicine_ocl_charges_period_idx" json:"year"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	UpdatedBy      string          `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OCLCharge) TableName() string { return "medicine_ocl_charges" }
