package models

import (
	"time"

	"github.com/google/uuid"
)

// CorporateClient is the freight billing entity. Rows are owned by the admin back office.
type CorporateClient struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CorporateCode string    `gorm:"column:corporate_code;not null"`
	CompanyName   string    `gorm:"column:company_name;not null"`
	Email         string    `gorm:"column:email"`
	ContactNumber string    `gorm:"column:contact_number"`
	GSTNumber     string    `gorm:"column:gst_number"`
	Address       string    `gorm:"column:address"`
	State         string    `gorm:"column:state"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CorporateClient) TableName() string { return "corporate_clients" }
