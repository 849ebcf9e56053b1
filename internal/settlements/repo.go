package settlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settlements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
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

func (r *repository) ListShipments(ctx context.Context, corporateID uuid.UUID, filter ShipmentFilter) ([]models.Shipment, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("corporate_id = ?", corporateID)
	if filter.UnpaidOnly {
		query = query.Where("payment_status = ?", enums.PaymentStatusUnpaid)
	}
	if filter.UninvoicedOnly {
		query = query.Where("invoice_number IS NULL")
	}
	if filter.From != nil {
		query = query.Where("booking_date >= ?", *filter.From)
	}
	if filter.Before != nil {
		query = query.Where("booking_date < ?", *filter.Before)
	}

	var shipments []models.Shipment
	err := query.
		Order("booking_date ASC").
		Order("consignment_number ASC").
		Find(&shipments).Error
	if err != nil {
		return nil, err
	}
	return shipments, nil
}

func (r *repository) ListMedicineBookings(ctx context.Context, medicineUserID uuid.UUID, from, before time.Time) ([]models.MedicineBooking, error) {
	var bookings []models.MedicineBooking
	err := r.db.WithContext(ctx).
		Where("medicine_user_id = ?", medicineUserID).
		Where("booking_date >= ? AND booking_date < ?", from, before).
		Order("booking_date ASC").
		Order("consignment_number ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindOCLCharge(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*models.OCLCharge, error) {
	var charge models.OCLCharge
	err := r.db.WithContext(ctx).
		Where("medicine_user_id = ? AND month = ? AND year = ?", medicineUserID, month, year).
		First(&charge).Error
	if err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *repository) UpsertOCLCharge(ctx context.Context, charge *models.OCLCharge) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "medicine_user_id"}, {Name: "month"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_by", "updated_at"}),
		}).
		Create(charge).Error
}

func (r *repository) CreateInvoice(ctx context.Context, record *models.InvoiceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindInvoice(ctx context.Context, number string) (*models.InvoiceRecord, error) {
	var record models.InvoiceRecord
	if err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) CountInvoicesIssuedOn(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceRecord{}).
		Where("issue_date >= ? AND issue_date < ?", start, start.AddDate(0, 0, 1)).
		Count(&count).Error
	return count, err
}

func (r *repository) AttachInvoice(ctx context.Context, number string, shipmentIDs []uuid.UUID) (int64, error) {
	if len(shipmentIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id IN ? AND invoice_number IS NULL", shipmentIDs).
		Update("invoice_number", number)
	return res.RowsAffected, res.Error
}

func (r *repository) MarkInvoicePaid(ctx context.Context, number string, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.InvoiceRecord{}).
		Where("invoice_number = ?", number).
		Updates(map[string]any{
			"status":  enums.InvoiceStatusPaid,
			"paid_at": paidAt,
		}).Error
}

func (r *repository) MarkShipmentsPaid(ctx context.Context, number string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("invoice_number = ?", number).
		Update("payment_status", enums.PaymentStatusPaid)
	return res.RowsAffected, res.Error
}
