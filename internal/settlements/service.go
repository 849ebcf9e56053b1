package settlements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/oclservices/ocl-backend/pkg/config"
	"github.com/oclservices/ocl-backend/pkg/db"
	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/types"
)

const (
	kindCorporateBills = "corporate_bills"
	kindInvoice        = "invoice"
	kindMedicine       = "medicine_settlement"
	kindOCLCharge      = "ocl_charge"
	kindInvoicePaid    = "invoice_paid"
)

// Service aggregates billing data and issues invoices.
type Service interface {
	CorporateBills(ctx context.Context, corporateID uuid.UUID, period PeriodQuery) (*CorporateBills, error)
	PreviewInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	IssueInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	MarkInvoicePaid(ctx context.Context, number, actor string) (*models.InvoiceRecord, error)
	MedicineSettlement(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*MedicineSettlement, error)
	SetOCLCharge(ctx context.Context, input OCLChargeInput) (*models.OCLCharge, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	numberer *invoiceNumberer
	rates    Rates
	biller   Party
	metrics  settlementRecorder
	now      func() time.Time
}

// NewService builds the settlement service. sequences and metrics may be nil.
func NewService(repo Repository, tx txRunner, sequences sequenceStore, cfg config.BillingConfig, metrics settlementRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlements repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	rates := RatesFromConfig(cfg)
	if rates.BillerState == "" {
		return nil, fmt.Errorf("biller state required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		numberer: newInvoiceNumberer(cfg.InvoiceTemplate, sequences),
		rates:    rates,
		biller:   BillerFromConfig(cfg),
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CorporateBills(ctx context.Context, corporateID uuid.UUID, query PeriodQuery) (*CorporateBills, error) {
	started := s.now()
	bills, _, err := s.aggregate(ctx, s.repo, corporateID, query, false)
	s.observe(kindCorporateBills, started, err)
	return bills, err
}

func (s *service) PreviewInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	started := s.now()
	invoice, err := s.preview(ctx, req)
	s.observe(kindInvoice, started, err)
	return invoice, err
}

func (s *service) preview(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	bills, client, err := s.aggregate(ctx, s.repo, req.CorporateID, req.Period, true)
	if err != nil {
		return nil, err
	}
	issue := s.issueDate(req.IssueDate)
	issued, err := s.repo.CountInvoicesIssuedOn(ctx, issue)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count issued invoices")
	}
	number, err := s.numberer.Preview(issue, issued)
	if err != nil {
		return nil, err
	}
	invoice, err := s.render(number, bills, client, issue)
	if err != nil {
		return nil, err
	}
	invoice.Provisional = true
	return invoice, nil
}

func (s *service) IssueInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	started := s.now()
	invoice, err := s.issue(ctx, req)
	s.observe(kindInvoice, started, err)
	if err == nil && s.metrics != nil {
		s.metrics.IncInvoiceIssued()
	}
	return invoice, err
}

func (s *service) issue(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	var invoice *Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bills, client, err := s.aggregate(ctx, repo, req.CorporateID, req.Period, true)
		if err != nil {
			return err
		}
		if len(bills.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no uninvoiced bills for the selected period")
		}
		ids := make([]uuid.UUID, 0, len(bills.Items))
		for _, item := range bills.Items {
			ids = append(ids, item.ShipmentID)
		}

		issue := s.issueDate(req.IssueDate)
		issued, err := repo.CountInvoicesIssuedOn(ctx, issue)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count issued invoices")
		}
		number, err := s.numberer.Next(ctx, issue, issued)
		if err != nil {
			return err
		}
		for i := range bills.Items {
			bills.Items[i].InvoiceNumber = &number
		}
		invoice, err = s.render(number, bills, client, issue)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(invoice)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode invoice payload")
		}
		record := &models.InvoiceRecord{
			ID:            uuid.New(),
			InvoiceNumber: number,
			CorporateID:   client.ID,
			PeriodStart:   invoice.PeriodStart,
			PeriodEnd:     invoice.PeriodEnd,
			IssueDate:     invoice.IssueDate,
			TaxMode:       invoice.Summary.TaxMode,
			GrandTotal:    invoice.Summary.GrandTotal,
			Status:        enums.InvoiceStatusIssued,
			Payload:       payload,
			IssuedBy:      strings.TrimSpace(req.Actor),
		}
		if err := repo.CreateInvoice(ctx, record); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "invoice number already issued, retry").
					WithDetails(map[string]any{"invoice_number": number})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice record")
		}
		attached, err := repo.AttachInvoice(ctx, number, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach invoice to shipments")
		}
		if attached != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeConflict, "shipments were invoiced concurrently, retry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) MarkInvoicePaid(ctx context.Context, number, actor string) (*models.InvoiceRecord, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice number required")
	}

	started := s.now()
	var record *models.InvoiceRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		record, err = repo.FindInvoice(ctx, number)
		if err != nil {
			return notFoundOrDependency(err, "invoice not found", "load invoice")
		}
		if record.Status == enums.InvoiceStatusPaid {
			return nil
		}
		paidAt := s.now()
		if err := repo.MarkInvoicePaid(ctx, number, paidAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice paid")
		}
		if _, err := repo.MarkShipmentsPaid(ctx, number); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark shipments paid")
		}
		record.Status = enums.InvoiceStatusPaid
		record.PaidAt = &paidAt
		return nil
	})
	s.observe(kindInvoicePaid, started, err)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) MedicineSettlement(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*MedicineSettlement, error) {
	started := s.now()
	settlement, err := s.medicineSettlement(ctx, medicineUserID, month, year)
	s.observe(kindMedicine, started, err)
	return settlement, err
}

func (s *service) medicineSettlement(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*MedicineSettlement, error) {
	if medicineUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine user id required")
	}
	from, to, err := monthWindow(month, year)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindMedicineUser(ctx, medicineUserID)
	if err != nil {
		return nil, notFoundOrDependency(err, "medicine user not found", "load medicine user")
	}
	bookings, err := s.repo.ListMedicineBookings(ctx, medicineUserID, from, *exclusiveEnd(&to))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medicine bookings")
	}

	var manual *decimal.Decimal
	charge, err := s.repo.FindOCLCharge(ctx, medicineUserID, month, year)
	switch {
	case err == nil:
		manual = &charge.Amount
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ocl charge")
	}

	items := make([]MedicineLine, 0, len(bookings))
	total, commission, weight := decimal.Zero, decimal.Zero, decimal.Zero
	for _, booking := range bookings {
		items = append(items, MedicineLine{
			BookingID:         booking.ID,
			ConsignmentNumber: booking.ConsignmentNumber,
			BookingReference:  booking.BookingReference,
			BookingDate:       booking.BookingDate,
			Origin:            placeSummary(booking.OriginData),
			Destination:       placeSummary(booking.DestinationData),
			Weight:            booking.Weight,
			TotalAmount:       booking.TotalAmount,
			Commission:        booking.Commission,
			SettlementStatus:  booking.SettlementStatus,
		})
		total = total.Add(booking.TotalAmount)
		commission = commission.Add(booking.Commission)
		weight = weight.Add(booking.Weight)
	}

	return &MedicineSettlement{
		MedicineUserID: user.ID,
		Name:           user.Name,
		Month:          month,
		Year:           year,
		TotalBookings:  len(items),
		TotalWeight:    weight,
		Items:          items,
		MedicineTotals: ReconcileMedicine(total, commission, manual),
	}, nil
}

func (s *service) SetOCLCharge(ctx context.Context, input OCLChargeInput) (*models.OCLCharge, error) {
	if input.MedicineUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine user id required")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ocl charge must not be negative")
	}
	if _, _, err := monthWindow(input.Month, input.Year); err != nil {
		return nil, err
	}

	started := s.now()
	if _, err := s.repo.FindMedicineUser(ctx, input.MedicineUserID); err != nil {
		err = notFoundOrDependency(err, "medicine user not found", "load medicine user")
		s.observe(kindOCLCharge, started, err)
		return nil, err
	}
	charge := &models.OCLCharge{
		ID:             uuid.New(),
		MedicineUserID: input.MedicineUserID,
		Month:          input.Month,
		Year:           input.Year,
		Amount:         input.Amount.Round(2),
		UpdatedBy:      strings.TrimSpace(input.Actor),
		UpdatedAt:      s.now(),
	}
	var err error
	if err = s.repo.UpsertOCLCharge(ctx, charge); err != nil {
		err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save ocl charge")
	}
	s.observe(kindOCLCharge, started, err)
	if err != nil {
		return nil, err
	}
	return charge, nil
}

// aggregate loads the client's shipments for the period. uninvoicedOnly limits
// the result to shipments not yet on an issued invoice.
func (s *service) aggregate(ctx context.Context, repo Repository, corporateID uuid.UUID, query PeriodQuery, uninvoicedOnly bool) (*CorporateBills, *models.CorporateClient, error) {
	if corporateID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "corporate id required")
	}
	period, err := resolvePeriod(query)
	if err != nil {
		return nil, nil, err
	}
	client, err := repo.FindCorporateClient(ctx, corporateID)
	if err != nil {
		return nil, nil, notFoundOrDependency(err, "corporate client not found", "load corporate client")
	}
	shipments, err := repo.ListShipments(ctx, corporateID, ShipmentFilter{
		From:           period.From,
		Before:         exclusiveEnd(period.To),
		UnpaidOnly:     period.UnpaidOnly,
		UninvoicedOnly: uninvoicedOnly,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}

	items := make([]BillLine, 0, len(shipments))
	for _, shipment := range shipments {
		items = append(items, s.billLine(shipment))
	}
	return &CorporateBills{
		CorporateID: client.ID,
		CompanyName: client.CompanyName,
		State:       client.State,
		Period:      period,
		Items:       items,
		Summary:     Summarize(items, client.State, s.rates),
	}, client, nil
}

func (s *service) billLine(shipment models.Shipment) BillLine {
	return BillLine{
		ShipmentID:        shipment.ID,
		ConsignmentNumber: shipment.ConsignmentNumber,
		BookingReference:  shipment.BookingReference,
		BookingDate:       shipment.BookingDate,
		Origin:            placeSummary(shipment.OriginData),
		Destination:       placeSummary(shipment.DestinationData),
		ServiceType:       shipment.ServiceType,
		Weight:            shipment.ChargeableWeight,
		FreightCharge:     shipment.FreightCharge.Round(2),
		AWBCharge:         s.rates.AWB,
		Total:             shipment.FreightCharge.Add(s.rates.AWB).Round(2),
		PaymentStatus:     shipment.PaymentStatus,
		InvoiceNumber:     shipment.InvoiceNumber,
	}
}

func (s *service) render(number string, bills *CorporateBills, client *models.CorporateClient, issue time.Time) (*Invoice, error) {
	input := InvoiceInput{
		Number: number,
		Items:  bills.Items,
		BillTo: Party{
			Name:      client.CompanyName,
			Address:   client.Address,
			GSTNumber: client.GSTNumber,
			State:     client.State,
			Contact:   client.ContactNumber,
			Email:     client.Email,
		},
		Biller:    s.biller,
		Rates:     s.rates,
		IssueDate: issue,
	}
	if bills.Period.From != nil {
		input.PeriodStart = *bills.Period.From
	}
	if bills.Period.To != nil {
		input.PeriodEnd = *bills.Period.To
	}
	invoice, err := RenderInvoice(input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice")
	}
	return invoice, nil
}

func (s *service) issueDate(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return requested.UTC()
	}
	return s.now()
}

func (s *service) observe(kind string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(kind, s.now().Sub(started))
	if err != nil && pkgerrors.CodeOf(err) == pkgerrors.CodeDependency {
		s.metrics.IncFailure(kind)
	}
}

// placeSummary renders an origin/destination blob as "City, State".
func placeSummary(data types.JSONMap) string {
	city := data.String("city", "district", "name")
	state := data.String("state")
	switch {
	case city == "":
		return state
	case state == "" || strings.EqualFold(city, state):
		return city
	default:
		return city + ", " + state
	}
}

func notFoundOrDependency(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
