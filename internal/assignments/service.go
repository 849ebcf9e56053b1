package assignments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the assignment ledger operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.AssignmentEntry, error)
	AssignCourier(ctx context.Context, input AssignInput) (*models.AssignmentEntry, error)
	UpdateStatus(ctx context.Context, input StatusInput) (*models.AssignmentEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AssignmentEntry, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*EntryList, error)
	FindByStatus(ctx context.Context, status enums.AssignmentStatus, params pagination.Params) (*EntryList, error)
	FindByCourier(ctx context.Context, courierBoyID uuid.UUID, params pagination.Params) (*EntryList, error)
	FindByType(ctx context.Context, kind enums.AssignmentType, params pagination.Params) (*EntryList, error)
	FindByWork(ctx context.Context, work enums.AssignmentWork, params pagination.Params) (*EntryList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher statusPublisher
	metrics   transitionRecorder
	now       func() time.Time
}

// NewService builds the assignment ledger service. metrics may be nil.
func NewService(repo Repository, tx txRunner, publisher statusPublisher, metrics transitionRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("status publisher required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.AssignmentEntry, error) {
	if input.Source.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment source is required")
	}
	if !input.Work.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "work must be pickup, delivery or both")
	}
	if len(input.Orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order is required")
	}
	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.AssignmentEntry{
		ID:         uuid.New(),
		Type:       input.Source.Type(),
		Work:       input.Work,
		Status:     enums.AssignmentStatusPending,
		AssignedBy: strings.TrimSpace(input.Actor),
		AssignedAt: now,
		Notes:      notes,
		Version:    1,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.snapshotSource(ctx, repo, input.Source, entry); err != nil {
			return err
		}
		orders, err := s.snapshotOrders(ctx, repo, input.Source, input.Orders)
		if err != nil {
			return err
		}
		for i := range orders {
			orders[i].EntryID = entry.ID
		}
		entry.Orders = orders

		if input.CourierBoyID != nil {
			courier, err := loadActiveCourier(ctx, repo, *input.CourierBoyID)
			if err != nil {
				return err
			}
			entry.Status = enums.AssignmentStatusAssigned
			entry.AssignedCourier = courierSnapshot(courier)
		}

		if err := repo.CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition("", entry.Status)
	s.publisher.Publish(StatusEvent{
		Kind:         EventCreated,
		EntryID:      entry.ID,
		Type:         entry.Type,
		To:           entry.Status,
		CourierBoyID: entry.AssignedCourier.CourierBoyID,
		Actor:        entry.AssignedBy,
		At:           now,
	})
	return entry, nil
}

func (s *service) AssignCourier(ctx context.Context, input AssignInput) (*models.AssignmentEntry, error) {
	if input.EntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.CourierBoyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier boy id required")
	}

	var (
		entry *models.AssignmentEntry
		from  enums.AssignmentStatus
		now   = s.now()
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		entry, err = loadEntry(ctx, repo, input.EntryID)
		if err != nil {
			return err
		}
		if !canAssignCourier(entry.Status) {
			s.recordRejected("state_conflict")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "courier can only be assigned while pending or assigned").
				WithDetails(map[string]any{"status": entry.Status})
		}
		courier, err := loadActiveCourier(ctx, repo, input.CourierBoyID)
		if err != nil {
			return err
		}

		snapshot := courierSnapshot(courier)
		updates := map[string]any{
			"status":         enums.AssignmentStatusAssigned,
			"courier_boy_id": snapshot.CourierBoyID,
			"courier_name":   snapshot.Name,
			"courier_phone":  snapshot.Phone,
			"courier_email":  snapshot.Email,
			"courier_area":   snapshot.Area,
			"assigned_at":    now,
		}
		if actor := strings.TrimSpace(input.Actor); actor != "" {
			updates["assigned_by"] = actor
		}
		from = entry.Status
		return s.persist(ctx, repo, entry, updates)
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(from, entry.Status)
	s.publisher.Publish(StatusEvent{
		Kind:         EventCourierAssigned,
		EntryID:      entry.ID,
		Type:         entry.Type,
		From:         from,
		To:           entry.Status,
		CourierBoyID: entry.AssignedCourier.CourierBoyID,
		Actor:        strings.TrimSpace(input.Actor),
		At:           now,
	})
	return entry, nil
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) (*models.AssignmentEntry, error) {
	if input.EntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment status")
	}
	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}
	if input.CourierScope != nil && !courierMayRequest(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "couriers may only start or complete assignments")
	}

	var (
		entry   *models.AssignmentEntry
		from    enums.AssignmentStatus
		changed bool
		now     = s.now()
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		entry, err = loadEntry(ctx, repo, input.EntryID)
		if err != nil {
			return err
		}
		if input.CourierScope != nil {
			assigned := entry.AssignedCourier.CourierBoyID
			if assigned == nil || *assigned != *input.CourierScope {
				return pkgerrors.New(pkgerrors.CodeForbidden, "assignment does not belong to courier")
			}
		}
		if entry.Status == input.Status {
			return nil
		}
		if !CanTransition(entry.Status, input.Status) {
			s.recordRejected("state_conflict")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": entry.Status, "to": input.Status})
		}
		if input.Status == enums.AssignmentStatusAssigned && !entry.AssignedCourier.IsSet() {
			return pkgerrors.New(pkgerrors.CodeValidation, "a courier is required to mark an assignment as assigned; use the assign courier operation")
		}

		updates := transitionUpdates(entry, input.Status, now)
		if notes != nil {
			updates["notes"] = notes
		}
		from = entry.Status
		if err := s.persist(ctx, repo, entry, updates); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return entry, nil
	}

	s.recordTransition(from, entry.Status)
	s.publisher.Publish(StatusEvent{
		Kind:         EventStatusChanged,
		EntryID:      entry.ID,
		Type:         entry.Type,
		From:         from,
		To:           entry.Status,
		CourierBoyID: entry.AssignedCourier.CourierBoyID,
		Actor:        strings.TrimSpace(input.Actor),
		At:           now,
	})
	return entry, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AssignmentEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	return loadEntry(ctx, s.repo, id)
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*EntryList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid type filter")
	}
	if filters.Work != nil && !filters.Work.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid work filter")
	}

	params = params.Normalize()
	entries, err := s.repo.ListEntries(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignment entries")
	}

	list := &EntryList{
		Entries: entries,
		Limit:   params.Limit,
		Offset:  params.Offset,
	}
	if len(entries) > params.Limit {
		list.Entries = entries[:params.Limit]
		list.HasMore = true
	}
	if list.Entries == nil {
		list.Entries = []models.AssignmentEntry{}
	}
	return list, nil
}

func (s *service) FindByStatus(ctx context.Context, status enums.AssignmentStatus, params pagination.Params) (*EntryList, error) {
	return s.List(ctx, ListFilters{Status: &status}, params)
}

func (s *service) FindByCourier(ctx context.Context, courierBoyID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if courierBoyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier boy id required")
	}
	return s.List(ctx, ListFilters{CourierBoyID: &courierBoyID}, params)
}

func (s *service) FindByType(ctx context.Context, kind enums.AssignmentType, params pagination.Params) (*EntryList, error) {
	return s.List(ctx, ListFilters{Type: &kind}, params)
}

func (s *service) FindByWork(ctx context.Context, work enums.AssignmentWork, params pagination.Params) (*EntryList, error) {
	return s.List(ctx, ListFilters{Work: &work}, params)
}

// persist writes updates guarded by the entry version and mirrors them in memory.
func (s *service) persist(ctx context.Context, repo Repository, entry *models.AssignmentEntry, updates map[string]any) error {
	rows, err := repo.UpdateEntry(ctx, entry.ID, entry.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment entry")
	}
	if rows == 0 {
		s.recordRejected("version_conflict")
		return pkgerrors.New(pkgerrors.CodeConflict, "assignment was modified concurrently, reload and retry")
	}
	applyUpdates(entry, updates)
	entry.Version++
	return nil
}

func (s *service) snapshotSource(ctx context.Context, repo Repository, source Source, entry *models.AssignmentEntry) error {
	if id, ok := source.CorporateID(); ok {
		client, err := repo.FindCorporateClient(ctx, id)
		if err != nil {
			return notFoundOrDependency(err, "corporate client not found", "load corporate client")
		}
		entry.CorporateID = &client.ID
		entry.SourceName = client.CompanyName
		entry.SourceEmail = client.Email
		entry.SourcePhone = client.ContactNumber
		return nil
	}
	if id, ok := source.MedicineUserID(); ok {
		user, err := repo.FindMedicineUser(ctx, id)
		if err != nil {
			return notFoundOrDependency(err, "medicine user not found", "load medicine user")
		}
		entry.MedicineUserID = &user.ID
		entry.SourceName = user.Name
		entry.SourceEmail = user.Email
		entry.SourcePhone = user.Phone
		return nil
	}
	requester := source.Requester()
	entry.SourceName = requester.Name
	entry.SourceEmail = requester.Email
	entry.SourcePhone = requester.Phone
	return nil
}

func (s *service) snapshotOrders(ctx context.Context, repo Repository, source Source, refs []OrderRef) ([]models.AssignmentOrder, error) {
	wantBookings := source.Type().UsesMedicineBookings()
	seen := make(map[uuid.UUID]struct{}, len(refs))
	ids := make([]uuid.UUID, 0, len(refs))
	for i, ref := range refs {
		_, isShipment := ref.ShipmentID()
		_, isBooking := ref.MedicineBookingID()
		if !isShipment && !isBooking {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item must reference a shipment or a medicine booking").
				WithDetails(map[string]any{"index": i})
		}
		if wantBookings && !isBooking {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine assignments may only contain medicine bookings").
				WithDetails(map[string]any{"index": i})
		}
		if !wantBookings && !isShipment {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only medicine assignments may contain medicine bookings").
				WithDetails(map[string]any{"index": i})
		}
		key := ref.key()
		if _, dup := seen[key]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order referenced more than once").
				WithDetails(map[string]any{"index": i, "id": key})
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}

	if wantBookings {
		return s.snapshotBookings(ctx, repo, source, ids)
	}
	return s.snapshotShipments(ctx, repo, source, ids)
}

func (s *service) snapshotShipments(ctx context.Context, repo Repository, source Source, ids []uuid.UUID) ([]models.AssignmentOrder, error) {
	shipments, err := repo.FindShipments(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipments")
	}
	byID := make(map[uuid.UUID]models.Shipment, len(shipments))
	for _, shipment := range shipments {
		byID[shipment.ID] = shipment
	}

	corporateID, scoped := source.CorporateID()
	var billingEntity uuid.UUID
	orders := make([]models.AssignmentOrder, 0, len(ids))
	for i, id := range ids {
		shipment, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found").
				WithDetails(map[string]any{"shipment_id": id})
		}
		switch {
		case scoped && shipment.CorporateID != corporateID:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment does not belong to the corporate client").
				WithDetails(map[string]any{"shipment_id": id})
		case i == 0:
			billingEntity = shipment.CorporateID
		case shipment.CorporateID != billingEntity:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "all shipments must belong to the same billing entity").
				WithDetails(map[string]any{"shipment_id": id})
		}
		shipmentID := shipment.ID
		orders = append(orders, models.AssignmentOrder{
			ID:                uuid.New(),
			Position:          i,
			ShipmentID:        &shipmentID,
			ConsignmentNumber: shipment.ConsignmentNumber,
			BookingReference:  shipment.BookingReference,
			OriginData:        shipment.OriginData.Clone(),
			DestinationData:   shipment.DestinationData.Clone(),
			ShipmentData:      shipment.ShipmentData.Clone(),
			InvoiceData:       shipment.InvoiceData.Clone(),
			ChargesData:       shipment.ChargesData.Clone(),
		})
	}
	return orders, nil
}

func (s *service) snapshotBookings(ctx context.Context, repo Repository, source Source, ids []uuid.UUID) ([]models.AssignmentOrder, error) {
	bookings, err := repo.FindMedicineBookings(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load medicine bookings")
	}
	byID := make(map[uuid.UUID]models.MedicineBooking, len(bookings))
	for _, booking := range bookings {
		byID[booking.ID] = booking
	}

	userID, _ := source.MedicineUserID()
	orders := make([]models.AssignmentOrder, 0, len(ids))
	for i, id := range ids {
		booking, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "medicine booking not found").
				WithDetails(map[string]any{"medicine_booking_id": id})
		}
		if booking.MedicineUserID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine booking does not belong to the medicine user").
				WithDetails(map[string]any{"medicine_booking_id": id})
		}
		bookingID := booking.ID
		orders = append(orders, models.AssignmentOrder{
			ID:                uuid.New(),
			Position:          i,
			MedicineBookingID: &bookingID,
			ConsignmentNumber: booking.ConsignmentNumber,
			BookingReference:  booking.BookingReference,
			OriginData:        booking.OriginData.Clone(),
			DestinationData:   booking.DestinationData.Clone(),
			ChargesData:       booking.ChargesData.Clone(),
		})
	}
	return orders, nil
}

func (s *service) recordTransition(from, to enums.AssignmentStatus) {
	if s.metrics != nil {
		s.metrics.IncTransition(string(from), string(to))
	}
}

func (s *service) recordRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncRejected(reason)
	}
}

func loadEntry(ctx context.Context, repo Repository, id uuid.UUID) (*models.AssignmentEntry, error) {
	entry, err := repo.FindEntry(ctx, id)
	if err != nil {
		return nil, notFoundOrDependency(err, "assignment not found", "load assignment entry")
	}
	return entry, nil
}

func loadActiveCourier(ctx context.Context, repo Repository, id uuid.UUID) (*models.CourierBoy, error) {
	courier, err := repo.FindCourierBoy(ctx, id)
	if err != nil {
		return nil, notFoundOrDependency(err, "courier boy not found", "load courier boy")
	}
	if !courier.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier boy is inactive").
			WithDetails(map[string]any{"courier_boy_id": id})
	}
	return courier, nil
}

func courierSnapshot(courier *models.CourierBoy) models.AssignedCourier {
	id := courier.ID
	return models.AssignedCourier{
		CourierBoyID: &id,
		Name:         courier.FullName,
		Phone:        courier.Phone,
		Email:        courier.Email,
		Area:         courier.Area,
	}
}

func courierMayRequest(status enums.AssignmentStatus) bool {
	return status == enums.AssignmentStatusInProgress || status == enums.AssignmentStatusCompleted
}

func normalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if utf8.RuneCountInString(trimmed) > MaxNotesLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("notes must be at most %d characters", MaxNotesLength))
	}
	return &trimmed, nil
}

func notFoundOrDependency(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
