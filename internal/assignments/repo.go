package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.AssignmentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindEntry(ctx context.Context, id uuid.UUID) (*models.AssignmentEntry, error) {
	var entry models.AssignmentEntry
	err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) UpdateEntry(ctx context.Context, id uuid.UUID, version int, updates map[string]any) (int64, error) {
	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.AssignmentEntry{}).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListEntries(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.AssignmentEntry, error) {
	params = params.Normalize()
	query := r.db.WithContext(ctx).Model(&models.AssignmentEntry{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Work != nil {
		query = query.Where("work = ?", *filters.Work)
	}
	if filters.CourierBoyID != nil {
		query = query.Where("courier_boy_id = ?", *filters.CourierBoyID)
	}
	if filters.CorporateID != nil {
		query = query.Where("corporate_id = ?", *filters.CorporateID)
	}
	if filters.MedicineUserID != nil {
		query = query.Where("medicine_user_id = ?", *filters.MedicineUserID)
	}

	var entries []models.AssignmentEntry
	err := query.
		Preload("Orders", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("assigned_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Offset(params.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindCorporateClient(ctx context.Context, id uuid.UUID) (*models.CorporateClient, error) {
	var client models.CorporateClient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindMedicineUser(ctx context.Context, id uuid.UUID) (*models.MedicineUser, error) {
	var user models.MedicineUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindCourierBoy(ctx context.Context, id uuid.UUID) (*models.CourierBoy, error) {
	var courier models.CourierBoy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&courier).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) FindShipments(ctx context.Context, ids []uuid.UUID) ([]models.Shipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var shipments []models.Shipment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

func (r *repository) FindMedicineBookings(ctx context.Context, ids []uuid.UUID) ([]models.MedicineBooking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var bookings []models.MedicineBooking
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}
