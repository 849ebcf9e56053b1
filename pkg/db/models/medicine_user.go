package models

import (
	"time"

	"github.com/google/uuid"
)

// MedicineUser operates a medicine booking counter and is settled monthly.
type MedicineUser struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MedicineUser) TableName() string { return "medicine_users" }
