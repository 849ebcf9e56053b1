package settlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/db/models"
)

// ShipmentFilter bounds a shipment query. Before is exclusive.
type ShipmentFilter struct {
	From       *time.Time
	Before     *time.Time
	UnpaidOnly bool
	// UninvoicedOnly drops shipments already stamped with an invoice number.
	UninvoicedOnly bool
}

// Repository reads billing inputs and persists issued invoices.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindCorporateClient(ctx context.Context, id uuid.UUID) (*models.CorporateClient, error)
	FindMedicineUser(ctx context.Context, id uuid.UUID) (*models.MedicineUser, error)
	// ListShipments returns shipments sorted by booking date then consignment number.
	ListShipments(ctx context.Context, corporateID uuid.UUID, filter ShipmentFilter) ([]models.Shipment, error)
	ListMedicineBookings(ctx context.Context, medicineUserID uuid.UUID, from, before time.Time) ([]models.MedicineBooking, error)

	FindOCLCharge(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*models.OCLCharge, error)
	UpsertOCLCharge(ctx context.Context, charge *models.OCLCharge) error

	CreateInvoice(ctx context.Context, record *models.InvoiceRecord) error
	FindInvoice(ctx context.Context, number string) (*models.InvoiceRecord, error)
	// CountInvoicesIssuedOn counts invoices whose issue date falls on day (UTC).
	CountInvoicesIssuedOn(ctx context.Context, day time.Time) (int64, error)
	// AttachInvoice stamps the invoice number on shipments that have none yet.
	AttachInvoice(ctx context.Context, number string, shipmentIDs []uuid.UUID) (int64, error)
	MarkInvoicePaid(ctx context.Context, number string, paidAt time.Time) error
	MarkShipmentsPaid(ctx context.Context, number string) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settlementRecorder interface {
	ObserveDuration(kind string, d time.Duration)
	IncFailure(kind string)
	IncInvoiceIssued()
}
