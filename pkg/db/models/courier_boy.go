package models

import (
	"time"

	"github.com/google/uuid"
)

// CourierBoy is a field agent that can receive assignments.
type CourierBoy struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName  string    `gorm:"column:full_name;not null"`
	Phone     string    `gorm:"column:phone"`
	Email     string    `gorm:"column:email"`
	Area      string    `gorm:"column:area"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CourierBoy) TableName() string { return "courier_boys" }
