package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/pagination"
)

// Repository defines persistence for assignment entries and the collaborator
// records they snapshot.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.AssignmentEntry) error
	FindEntry(ctx context.Context, id uuid.UUID) (*models.AssignmentEntry, error)
	// UpdateEntry applies updates only when the stored version matches and bumps it.
	// It returns the number of rows changed.
	UpdateEntry(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (int64, error)
	ListEntries(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.AssignmentEntry, error)

	FindCorporateClient(ctx context.Context, id uuid.UUID) (*models.CorporateClient, error)
	FindMedicineUser(ctx context.Context, id uuid.UUID) (*models.MedicineUser, error)
	FindCourierBoy(ctx context.Context, id uuid.UUID) (*models.CourierBoy, error)
	FindShipments(ctx context.Context, ids []uuid.UUID) ([]models.Shipment, error)
	FindMedicineBookings(ctx context.Context, ids []uuid.UUID) ([]models.MedicineBooking, error)
}

type statusPublisher interface {
	Publish(event StatusEvent) int
}

type transitionRecorder interface {
	IncTransition(from, to string)
	IncRejected(reason string)
}
