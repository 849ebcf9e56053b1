package settlements

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/config"
	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/types"
)

type stubSettlementRepo struct {
	corporates  map[uuid.UUID]*models.CorporateClient
	medicine    map[uuid.UUID]*models.MedicineUser
	shipments   []models.Shipment
	bookings    []models.MedicineBooking
	charges     map[string]*models.OCLCharge
	invoices    map[string]*models.InvoiceRecord
	lastFilter  ShipmentFilter
	listErr     error
	countErr    error
	createErr   error
	attachShort bool
}

func newStubSettlementRepo() *stubSettlementRepo {
	return &stubSettlementRepo{
		corporates: map[uuid.UUID]*models.CorporateClient{},
		medicine:   map[uuid.UUID]*models.MedicineUser{},
		charges:    map[string]*models.OCLCharge{},
		invoices:   map[string]*models.InvoiceRecord{},
	}
}

func chargeKey(id uuid.UUID, month, year int) string {
	return fmt.Sprintf("%s/%d/%d", id, month, year)
}

func (s *stubSettlementRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSettlementRepo) FindCorporateClient(ctx context.Context, id uuid.UUID) (*models.CorporateClient, error) {
	if c, ok := s.corporates[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSettlementRepo) FindMedicineUser(ctx context.Context, id uuid.UUID) (*models.MedicineUser, error) {
	if u, ok := s.medicine[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSettlementRepo) ListShipments(ctx context.Context, corporateID uuid.UUID, filter ShipmentFilter) ([]models.Shipment, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Shipment
	for _, shipment := range s.shipments {
		if shipment.CorporateID != corporateID {
			continue
		}
		if filter.UnpaidOnly && shipment.PaymentStatus != enums.PaymentStatusUnpaid {
			continue
		}
		if filter.UninvoicedOnly && shipment.InvoiceNumber != nil {
			continue
		}
		if filter.From != nil && shipment.BookingDate.Before(*filter.From) {
			continue
		}
		if filter.Before != nil && !shipment.BookingDate.Before(*filter.Before) {
			continue
		}
		out = append(out, shipment)
	}
	return out, nil
}

func (s *stubSettlementRepo) ListMedicineBookings(ctx context.Context, medicineUserID uuid.UUID, from, before time.Time) ([]models.MedicineBooking, error) {
	var out []models.MedicineBooking
	for _, booking := range s.bookings {
		if booking.MedicineUserID == medicineUserID && !booking.BookingDate.Before(from) && booking.BookingDate.Before(before) {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (s *stubSettlementRepo) FindOCLCharge(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*models.OCLCharge, error) {
	if c, ok := s.charges[chargeKey(medicineUserID, month, year)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSettlementRepo) UpsertOCLCharge(ctx context.Context, charge *models.OCLCharge) error {
	s.charges[chargeKey(charge.MedicineUserID, charge.Month, charge.Year)] = charge
	return nil
}

func (s *stubSettlementRepo) CreateInvoice(ctx context.Context, record *models.InvoiceRecord) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.invoices[record.InvoiceNumber] = record
	return nil
}

func (s *stubSettlementRepo) FindInvoice(ctx context.Context, number string) (*models.InvoiceRecord, error) {
	if r, ok := s.invoices[number]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSettlementRepo) CountInvoicesIssuedOn(ctx context.Context, day time.Time) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	var n int64
	y, m, d := day.UTC().Date()
	for _, record := range s.invoices {
		ry, rm, rd := record.IssueDate.UTC().Date()
		if ry == y && rm == m && rd == d {
			n++
		}
	}
	return n, nil
}

func (s *stubSettlementRepo) AttachInvoice(ctx context.Context, number string, shipmentIDs []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range shipmentIDs {
		for i := range s.shipments {
			if s.shipments[i].ID == id && s.shipments[i].InvoiceNumber == nil {
				value := number
				s.shipments[i].InvoiceNumber = &value
				n++
			}
		}
	}
	if s.attachShort {
		n--
	}
	return n, nil
}

func (s *stubSettlementRepo) MarkInvoicePaid(ctx context.Context, number string, paidAt time.Time) error {
	record := s.invoices[number]
	record.Status = enums.InvoiceStatusPaid
	record.PaidAt = &paidAt
	return nil
}

func (s *stubSettlementRepo) MarkShipmentsPaid(ctx context.Context, number string) (int64, error) {
	var n int64
	for i := range s.shipments {
		if s.shipments[i].InvoiceNumber != nil && *s.shipments[i].InvoiceNumber == number {
			s.shipments[i].PaymentStatus = enums.PaymentStatusPaid
			n++
		}
	}
	return n, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type recordingSettlementMetrics struct {
	observed []string
	failures []string
	issued   int
}

func (m *recordingSettlementMetrics) ObserveDuration(kind string, d time.Duration) {
	m.observed = append(m.observed, kind)
}

func (m *recordingSettlementMetrics) IncFailure(kind string) {
	m.failures = append(m.failures, kind)
}

func (m *recordingSettlementMetrics) IncInvoiceIssued() {
	m.issued++
}

type settlementFixture struct {
	repo      *stubSettlementRepo
	metrics   *recordingSettlementMetrics
	sequences *stubSequences
	svc       *service
	corporate *models.CorporateClient
	medicine  *models.MedicineUser
}

func testBillingConfig() config.BillingConfig {
	return config.BillingConfig{
		BillerName:      "OCL Services",
		BillerState:     "Assam",
		BillerAddress:   "Guwahati, Assam",
		InvoiceTemplate: DefaultInvoiceNumberTemplate,
		FuelRate:        "0.10",
		GSTRate:         "0.18",
		AWBCharge:       "50",
	}
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	repo := newStubSettlementRepo()
	metrics := &recordingSettlementMetrics{}
	sequences := &stubSequences{}
	svc, err := NewService(repo, stubTx{}, sequences, testBillingConfig(), metrics)
	require.NoError(t, err)
	impl := svc.(*service)
	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return now }

	corporate := &models.CorporateClient{ID: uuid.New(), CompanyName: "Acme Traders", State: "Assam", Address: "GS Road"}
	medicine := &models.MedicineUser{ID: uuid.New(), Name: "City Pharma"}
	repo.corporates[corporate.ID] = corporate
	repo.medicine[medicine.ID] = medicine

	return &settlementFixture{repo: repo, metrics: metrics, sequences: sequences, svc: impl, corporate: corporate, medicine: medicine}
}

func (f *settlementFixture) addShipment(consignment int64, booked time.Time, freight string, status enums.PaymentStatus) models.Shipment {
	shipment := models.Shipment{
		ID:                uuid.New(),
		ConsignmentNumber: consignment,
		CorporateID:       f.corporate.ID,
		BookingDate:       booked,
		ServiceType:       "surface",
		ChargeableWeight:  decimal.RequireFromString("2.5"),
		FreightCharge:     decimal.RequireFromString(freight),
		PaymentStatus:     status,
		OriginData:        types.JSONMap{"city": "Guwahati", "state": "Assam"},
		DestinationData:   types.JSONMap{"city": "Shillong", "state": "Meghalaya"},
	}
	f.repo.shipments = append(f.repo.shipments, shipment)
	return shipment
}

func TestNewSettlementServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, stubTx{}, nil, testBillingConfig(), nil)
	assert.Error(t, err)
	_, err = NewService(newStubSettlementRepo(), nil, nil, testBillingConfig(), nil)
	assert.Error(t, err)
	cfg := testBillingConfig()
	cfg.BillerState = ""
	_, err = NewService(newStubSettlementRepo(), stubTx{}, nil, cfg, nil)
	assert.Error(t, err)
}

func TestCorporateBillsUnpaidByDefault(t *testing.T) {
	f := newSettlementFixture(t)
	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "600", enums.PaymentStatusUnpaid)
	f.addShipment(871002, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), "400", enums.PaymentStatusUnpaid)
	f.addShipment(870900, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), "999", enums.PaymentStatusPaid)

	bills, err := f.svc.CorporateBills(context.Background(), f.corporate.ID, PeriodQuery{})
	require.NoError(t, err)
	assert.True(t, f.repo.lastFilter.UnpaidOnly)
	require.Len(t, bills.Items, 2)
	assert.Equal(t, "Guwahati, Assam", bills.Items[0].Origin)
	assert.Equal(t, "Shillong, Meghalaya", bills.Items[0].Destination)
	assertMoney(t, "50.00", bills.Items[0].AWBCharge, "awb")
	assertMoney(t, "650.00", bills.Items[0].Total, "line total")
	assertMoney(t, "1416.00", bills.Summary.GrandTotal, "grandTotal")
	assertMoney(t, "108.00", bills.Summary.CGST, "cgst")
	assertMoney(t, "5.00", bills.Summary.TotalWeight.Round(2), "weight")
	assert.Equal(t, []string{kindCorporateBills}, f.metrics.observed)
}

func TestCorporateBillsDateRangeIsInclusive(t *testing.T) {
	f := newSettlementFixture(t)
	f.addShipment(1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "100", enums.PaymentStatusPaid)
	f.addShipment(2, time.Date(2025, 3, 31, 18, 0, 0, 0, time.UTC), "100", enums.PaymentStatusUnpaid)
	f.addShipment(3, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "100", enums.PaymentStatusUnpaid)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	bills, err := f.svc.CorporateBills(context.Background(), f.corporate.ID, PeriodQuery{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, bills.Items, 2)
	assert.False(t, f.repo.lastFilter.UnpaidOnly)
	assert.Equal(t, int64(1), bills.Items[0].ConsignmentNumber)
	assert.Equal(t, int64(2), bills.Items[1].ConsignmentNumber)

	month, err := f.svc.CorporateBills(context.Background(), f.corporate.ID, PeriodQuery{Month: 4, Year: 2025})
	require.NoError(t, err)
	require.Len(t, month.Items, 1)
	assert.Equal(t, int64(3), month.Items[0].ConsignmentNumber)
}

func TestCorporateBillsEmptyPeriod(t *testing.T) {
	f := newSettlementFixture(t)
	bills, err := f.svc.CorporateBills(context.Background(), f.corporate.ID, PeriodQuery{Month: 1, Year: 2024})
	require.NoError(t, err)
	assert.NotNil(t, bills.Items)
	assert.Empty(t, bills.Items)
	assert.Equal(t, 0, bills.Summary.TotalBills)
	assert.True(t, bills.Summary.GrandTotal.IsZero())
	assert.True(t, bills.Summary.CGST.IsZero())
	assert.True(t, bills.Summary.IGST.IsZero())
}

func TestCorporateBillsErrors(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.svc.CorporateBills(ctx, uuid.New(), PeriodQuery{})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.CorporateBills(ctx, f.corporate.ID, PeriodQuery{Month: 14, Year: 2025})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	f.repo.listErr = errors.New("connection refused")
	_, err = f.svc.CorporateBills(ctx, f.corporate.ID, PeriodQuery{})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.True(t, pkgerrors.IsRetryable(err))
	assert.Equal(t, []string{kindCorporateBills}, f.metrics.failures)
}

func TestPreviewInvoiceDoesNotConsumeSequence(t *testing.T) {
	f := newSettlementFixture(t)
	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "1000", enums.PaymentStatusUnpaid)

	invoice, err := f.svc.PreviewInvoice(context.Background(), InvoiceRequest{CorporateID: f.corporate.ID})
	require.NoError(t, err)
	assert.True(t, invoice.Provisional)
	assert.Equal(t, 0, f.sequences.calls)
	assert.Equal(t, "Acme Traders", invoice.BillTo.Name)
	assert.Equal(t, "OCL Services", invoice.Biller.Name)
	assertMoney(t, "1357.00", invoice.Summary.GrandTotal, "grandTotal")
	assert.Empty(t, f.repo.invoices)
}

func TestIssueInvoicePersistsAndStampsShipments(t *testing.T) {
	f := newSettlementFixture(t)
	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "1000", enums.PaymentStatusUnpaid)
	ctx := context.Background()

	invoice, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID, Actor: "accounts@ocl"})
	require.NoError(t, err)
	assert.Equal(t, "OCL/2025-26/20250402-0001", invoice.Number)
	assert.False(t, invoice.Provisional)
	require.NotNil(t, invoice.Items[0].InvoiceNumber)
	assert.Equal(t, invoice.Number, *invoice.Items[0].InvoiceNumber)

	record := f.repo.invoices[invoice.Number]
	require.NotNil(t, record)
	assert.Equal(t, enums.InvoiceStatusIssued, record.Status)
	assert.Equal(t, enums.TaxModeIntraState, record.TaxMode)
	assertMoney(t, "1357.00", record.GrandTotal, "grandTotal")
	assert.Equal(t, "accounts@ocl", record.IssuedBy)
	assert.Contains(t, string(record.Payload), invoice.Number)
	assert.Equal(t, 1, f.metrics.issued)

	_, err = f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), "nothing left to invoice")

	paid, err := f.svc.MarkInvoicePaid(ctx, invoice.Number, "accounts@ocl")
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, enums.PaymentStatusPaid, f.repo.shipments[0].PaymentStatus)

	bills, err := f.svc.CorporateBills(ctx, f.corporate.ID, PeriodQuery{})
	require.NoError(t, err)
	assert.Empty(t, bills.Items, "paid shipments leave the unpaid aggregation")

	again, err := f.svc.MarkInvoicePaid(ctx, invoice.Number, "")
	require.NoError(t, err)
	assert.Equal(t, *paid.PaidAt, *again.PaidAt)
}

func TestIssueInvoiceSkipsShipmentsOnUnpaidInvoices(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "1000", enums.PaymentStatusUnpaid)

	first, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	require.NoError(t, err)

	f.addShipment(871002, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), "400", enums.PaymentStatusUnpaid)

	preview, err := f.svc.PreviewInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	require.NoError(t, err)
	require.Len(t, preview.Items, 1)
	assert.Equal(t, "OCL/2025-26/20250402-0002", preview.Number)

	second, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	require.NoError(t, err)
	assert.True(t, f.repo.lastFilter.UninvoicedOnly)
	require.Len(t, second.Items, 1)
	assert.Equal(t, int64(871002), second.Items[0].ConsignmentNumber)
	assert.NotEqual(t, first.Number, second.Number)
	assert.Equal(t, "OCL/2025-26/20250402-0002", second.Number)
	assert.Equal(t, first.Number, *f.repo.shipments[0].InvoiceNumber)
	assert.Equal(t, second.Number, *f.repo.shipments[1].InvoiceNumber)

	f.addShipment(871003, time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC), "250", enums.PaymentStatusUnpaid)
	third, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID, Period: PeriodQuery{Month: 3, Year: 2025}})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	assert.Equal(t, int64(871003), third.Items[0].ConsignmentNumber)

	bills, err := f.svc.CorporateBills(ctx, f.corporate.ID, PeriodQuery{})
	require.NoError(t, err)
	assert.Len(t, bills.Items, 3, "bills still list invoiced but unpaid shipments")
	assert.Equal(t, 3, f.metrics.issued)
}

func TestIssueInvoiceNumbersStayUniqueWithoutCounter(t *testing.T) {
	repo := newStubSettlementRepo()
	svc, err := NewService(repo, stubTx{}, nil, testBillingConfig(), nil)
	require.NoError(t, err)
	corporate := &models.CorporateClient{ID: uuid.New(), CompanyName: "Acme Traders", State: "Assam"}
	repo.corporates[corporate.ID] = corporate
	issueDate := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	var numbers []string
	for i, consignment := range []int64{871001, 871002} {
		repo.shipments = append(repo.shipments, models.Shipment{
			ID:                uuid.New(),
			ConsignmentNumber: consignment,
			CorporateID:       corporate.ID,
			BookingDate:       time.Date(2025, 3, 3+i, 0, 0, 0, 0, time.UTC),
			FreightCharge:     decimal.RequireFromString("100"),
			PaymentStatus:     enums.PaymentStatusUnpaid,
		})
		invoice, err := svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: corporate.ID, IssueDate: &issueDate})
		require.NoError(t, err)
		numbers = append(numbers, invoice.Number)
	}
	assert.Equal(t, []string{"OCL/2025-26/20250402-0001", "OCL/2025-26/20250402-0002"}, numbers)
}

func TestIssueInvoiceCounterFailureIsRetryable(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "1000", enums.PaymentStatusUnpaid)

	f.sequences.err = errors.New("dial tcp 10.0.0.5:6379: connect: connection refused")
	_, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.True(t, pkgerrors.IsRetryable(err))
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, f.repo.invoices)
	assert.Nil(t, f.repo.shipments[0].InvoiceNumber)

	f.sequences.err = nil
	f.repo.countErr = errors.New("connection reset")
	_, err = f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	f.repo.countErr = nil
	invoice, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	require.NoError(t, err)
	assert.Equal(t, "OCL/2025-26/20250402-0001", invoice.Number)
}

func TestIssueInvoiceFailures(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	f.addShipment(871001, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), "1000", enums.PaymentStatusUnpaid)
	f.repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "corporate_invoices_invoice_number_key"`)
	_, err = f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	f.repo.createErr = nil
	f.repo.attachShort = true
	_, err = f.svc.IssueInvoice(ctx, InvoiceRequest{CorporateID: f.corporate.ID})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, 0, f.metrics.issued)

	_, err = f.svc.MarkInvoicePaid(ctx, "OCL/UNKNOWN", "")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	_, err = f.svc.MarkInvoicePaid(ctx, "  ", "")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestMedicineSettlementAutoOCLCharge(t *testing.T) {
	f := newSettlementFixture(t)
	for i, amounts := range [][3]string{{"3000", "500", "1.250"}, {"2000", "300", "0.500"}} {
		f.repo.bookings = append(f.repo.bookings, models.MedicineBooking{
			ID:                uuid.New(),
			MedicineUserID:    f.medicine.ID,
			ConsignmentNumber: int64(990001 + i),
			BookingDate:       time.Date(2025, 3, 5+i, 0, 0, 0, 0, time.UTC),
			TotalAmount:       decimal.RequireFromString(amounts[0]),
			Commission:        decimal.RequireFromString(amounts[1]),
			Weight:            decimal.RequireFromString(amounts[2]),
			SettlementStatus:  enums.PaymentStatusUnpaid,
		})
	}
	f.repo.bookings = append(f.repo.bookings, models.MedicineBooking{
		ID:             uuid.New(),
		MedicineUserID: f.medicine.ID,
		BookingDate:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:    decimal.NewFromInt(9999),
		Weight:         decimal.NewFromInt(40),
	})

	settlement, err := f.svc.MedicineSettlement(context.Background(), f.medicine.ID, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, settlement.TotalBookings)
	assert.True(t, decimal.RequireFromString("1.75").Equal(settlement.TotalWeight), "total weight %s", settlement.TotalWeight)
	assertMoney(t, "5000.00", settlement.Total, "total")
	assertMoney(t, "800.00", settlement.TotalCommission, "commission")
	assertMoney(t, "4200.00", settlement.OCLCharge, "oclCharge")
	assertMoney(t, "800.00", settlement.RemainingBalance, "remaining")
	assert.False(t, settlement.OCLChargeManual)

	_, err = f.svc.SetOCLCharge(context.Background(), OCLChargeInput{
		MedicineUserID: f.medicine.ID,
		Month:          3,
		Year:           2025,
		Amount:         decimal.RequireFromString("1200.456"),
		Actor:          "admin@ocl",
	})
	require.NoError(t, err)

	settlement, err = f.svc.MedicineSettlement(context.Background(), f.medicine.ID, 3, 2025)
	require.NoError(t, err)
	assertMoney(t, "1200.46", settlement.OCLCharge, "oclCharge")
	assertMoney(t, "3799.54", settlement.RemainingBalance, "remaining")
	assert.True(t, settlement.OCLChargeManual)
}

func TestMedicineSettlementErrors(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	_, err := f.svc.MedicineSettlement(ctx, uuid.New(), 3, 2025)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.svc.MedicineSettlement(ctx, f.medicine.ID, 0, 2025)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	empty, err := f.svc.MedicineSettlement(ctx, f.medicine.ID, 1, 2025)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.RemainingBalance.IsZero())
	assert.True(t, empty.TotalWeight.IsZero())

	_, err = f.svc.SetOCLCharge(ctx, OCLChargeInput{MedicineUserID: f.medicine.ID, Month: 3, Year: 2025, Amount: decimal.NewFromInt(-1)})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.SetOCLCharge(ctx, OCLChargeInput{MedicineUserID: uuid.New(), Month: 3, Year: 2025, Amount: decimal.NewFromInt(10)})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
