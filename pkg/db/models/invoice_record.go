package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

// InvoiceRecord persists an issued corporate invoice and the shipments it billed.
type InvoiceRecord struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InvoiceNumber string              `gorm:"column:invoice_number;not null;uniqueIndex" json:"invoice_number"`
	CorporateID   uuid.UUID           `gorm:"column:corporate_id;type:uuid;not null" json:"corporate_id"`
	PeriodStart   time.Time           `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd     time.Time           `gorm:"column:period_end;not null" json:"period_end"`
	IssueDate     time.Time           `gorm:"column:issue_date;not null" json:"issue_date"`
	TaxMode       enums.TaxMode       `gorm:"column:tax_mode;not null" json:"tax_mode"`
	GrandTotal    decimal.Decimal     `gorm:"column:grand_total;type:numeric(14,2);not null" json:"grand_total"`
	Status        enums.InvoiceStatus `gorm:"column:status;not null;default:'issued'" json:"status"`
	Payload       json.RawMessage     `gorm:"column:payload;type:jsonb" json:"payload"`
	IssuedBy      string              `gorm:"column:issued_by" json:"issued_by"`
	PaidAt        *time.Time          `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InvoiceRecord) TableName() string { return "corporate_invoices" }
