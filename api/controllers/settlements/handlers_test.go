package settlements

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/api/middleware"
	internalsettlements "github.com/oclservices/ocl-backend/internal/settlements"
	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
)

type stubService struct {
	billsFn    func(ctx context.Context, corporateID uuid.UUID, period internalsettlements.PeriodQuery) (*internalsettlements.CorporateBills, error)
	previewFn  func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error)
	issueFn    func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error)
	paidFn     func(ctx context.Context, number, actor string) (*models.InvoiceRecord, error)
	medicineFn func(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*internalsettlements.MedicineSettlement, error)
	chargeFn   func(ctx context.Context, input internalsettlements.OCLChargeInput) (*models.OCLCharge, error)
}

func (s stubService) CorporateBills(ctx context.Context, corporateID uuid.UUID, period internalsettlements.PeriodQuery) (*internalsettlements.CorporateBills, error) {
	if s.billsFn != nil {
		return s.billsFn(ctx, corporateID, period)
	}
	return &internalsettlements.CorporateBills{CorporateID: corporateID}, nil
}

func (s stubService) PreviewInvoice(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
	if s.previewFn != nil {
		return s.previewFn(ctx, req)
	}
	return sampleInvoice(), nil
}

func (s stubService) IssueInvoice(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, req)
	}
	return sampleInvoice(), nil
}

func (s stubService) MarkInvoicePaid(ctx context.Context, number, actor string) (*models.InvoiceRecord, error) {
	if s.paidFn != nil {
		return s.paidFn(ctx, number, actor)
	}
	return &models.InvoiceRecord{InvoiceNumber: number, Status: enums.InvoiceStatusPaid}, nil
}

func (s stubService) MedicineSettlement(ctx context.Context, medicineUserID uuid.UUID, month, year int) (*internalsettlements.MedicineSettlement, error) {
	if s.medicineFn != nil {
		return s.medicineFn(ctx, medicineUserID, month, year)
	}
	return &internalsettlements.MedicineSettlement{MedicineUserID: medicineUserID, Month: month, Year: year}, nil
}

func (s stubService) SetOCLCharge(ctx context.Context, input internalsettlements.OCLChargeInput) (*models.OCLCharge, error) {
	if s.chargeFn != nil {
		return s.chargeFn(ctx, input)
	}
	return &models.OCLCharge{MedicineUserID: input.MedicineUserID, Month: input.Month, Year: input.Year, Amount: input.Amount}, nil
}

func sampleInvoice() *internalsettlements.Invoice {
	invoice, err := internalsettlements.RenderInvoice(internalsettlements.InvoiceInput{
		Number: "OCL/2025-26/20250402-0007",
		Items: []internalsettlements.BillLine{{
			ShipmentID:        uuid.New(),
			ConsignmentNumber: 871234,
			BookingDate:       time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC),
			Origin:            "Guwahati, Assam",
			Destination:       "Shillong, Meghalaya",
			ServiceType:       "surface",
			Weight:            decimal.RequireFromString("2.5"),
			FreightCharge:     decimal.RequireFromString("1000"),
			AWBCharge:         decimal.RequireFromString("50"),
			Total:             decimal.RequireFromString("1050"),
		}},
		BillTo:    internalsettlements.Party{Name: "Acme Traders", State: "Meghalaya"},
		Biller:    internalsettlements.Party{Name: "OCL Services", State: "Assam"},
		Rates:     internalsettlements.DefaultRates(),
		IssueDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		panic(err)
	}
	return invoice
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), "accounts@ocl.test", enums.ActorRoleAdmin, ""))
}

func asPortal(req *http.Request, role enums.ActorRole, entityID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), "billing@client.test", role, entityID.String()))
}

func TestCorporateBillsAdminReadsPathAndPeriod(t *testing.T) {
	corporateID := uuid.New()
	var gotID uuid.UUID
	var gotPeriod internalsettlements.PeriodQuery
	svc := stubService{
		billsFn: func(ctx context.Context, id uuid.UUID, period internalsettlements.PeriodQuery) (*internalsettlements.CorporateBills, error) {
			gotID = id
			gotPeriod = period
			return &internalsettlements.CorporateBills{CorporateID: id}, nil
		},
	}

	req := asAdmin(httptest.NewRequest(http.MethodGet, "/?from=2025-03-01&to=2025-03-31", nil))
	req = withParam(req, "corporateId", corporateID.String())
	resp := httptest.NewRecorder()
	CorporateBills(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotID != corporateID {
		t.Fatalf("expected corporate %s got %s", corporateID, gotID)
	}
	if gotPeriod.From == nil || gotPeriod.From.Format(dateLayout) != "2025-03-01" {
		t.Fatalf("unexpected from %v", gotPeriod.From)
	}
	if gotPeriod.To == nil || gotPeriod.To.Format(dateLayout) != "2025-03-31" {
		t.Fatalf("unexpected to %v", gotPeriod.To)
	}
}

func TestCorporateBillsRejectsBadPeriod(t *testing.T) {
	for _, query := range []string{"?month=13&year=2025", "?from=01-03-2025", "?year=1999&month=1"} {
		req := asAdmin(httptest.NewRequest(http.MethodGet, "/"+query, nil))
		req = withParam(req, "corporateId", uuid.NewString())
		resp := httptest.NewRecorder()
		CorporateBills(stubService{}, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", query, resp.Code)
		}
	}
}

func TestCorporateBillsMapsDependencyFailure(t *testing.T) {
	svc := stubService{
		billsFn: func(ctx context.Context, id uuid.UUID, period internalsettlements.PeriodQuery) (*internalsettlements.CorporateBills, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "list shipments")
		},
	}
	req := withParam(asAdmin(httptest.NewRequest(http.MethodGet, "/", nil)), "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	CorporateBills(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Retryable bool `json:"retryable"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Error.Retryable {
		t.Fatalf("expected retryable flag on aggregation failure")
	}
}

func TestCorporatePortalUsesTokenEntity(t *testing.T) {
	corporateID := uuid.New()
	var gotID uuid.UUID
	svc := stubService{
		billsFn: func(ctx context.Context, id uuid.UUID, period internalsettlements.PeriodQuery) (*internalsettlements.CorporateBills, error) {
			gotID = id
			return &internalsettlements.CorporateBills{CorporateID: id}, nil
		},
	}

	req := asPortal(httptest.NewRequest(http.MethodGet, "/?month=3&year=2025", nil), enums.ActorRoleCorporate, corporateID)
	resp := httptest.NewRecorder()
	CorporateBills(svc, FromToken(), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotID != corporateID {
		t.Fatalf("expected token entity %s got %s", corporateID, gotID)
	}
}

func TestPortalWithoutEntityIsForbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	CorporateBills(stubService{}, FromToken(), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestInvoicePreviewJSON(t *testing.T) {
	var gotReq internalsettlements.InvoiceRequest
	svc := stubService{
		previewFn: func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
			gotReq = req
			return sampleInvoice(), nil
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodGet, "/?issue_date=2025-04-02", nil))
	req = withParam(req, "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	InvoicePreview(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotReq.IssueDate == nil || gotReq.IssueDate.Format(dateLayout) != "2025-04-02" {
		t.Fatalf("expected issue date to be forwarded")
	}
	var envelope struct {
		Data struct {
			Number  string `json:"invoice_number"`
			Summary struct {
				TaxMode string `json:"tax_mode"`
			} `json:"summary"`
			AmountInWords string `json:"amount_in_words"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Number != "OCL/2025-26/20250402-0007" {
		t.Fatalf("unexpected number %s", envelope.Data.Number)
	}
	if envelope.Data.Summary.TaxMode != string(enums.TaxModeInterState) {
		t.Fatalf("unexpected tax mode %s", envelope.Data.Summary.TaxMode)
	}
	if !strings.HasSuffix(envelope.Data.AmountInWords, "Only") {
		t.Fatalf("unexpected words %q", envelope.Data.AmountInWords)
	}
}

func TestInvoicePreviewPDF(t *testing.T) {
	req := asAdmin(httptest.NewRequest(http.MethodGet, "/?format=pdf", nil))
	req = withParam(req, "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	InvoicePreview(stubService{}, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "OCL-2025-26-20250402-0007.pdf") {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a pdf document")
	}
}

func TestInvoicePreviewRejectsUnknownFormat(t *testing.T) {
	req := asAdmin(httptest.NewRequest(http.MethodGet, "/?format=xlsx", nil))
	req = withParam(req, "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	InvoicePreview(stubService{}, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestIssueInvoiceAcceptsEmptyBody(t *testing.T) {
	corporateID := uuid.New()
	var gotReq internalsettlements.InvoiceRequest
	svc := stubService{
		issueFn: func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
			gotReq = req
			return sampleInvoice(), nil
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/", nil))
	req = withParam(req, "corporateId", corporateID.String())
	resp := httptest.NewRecorder()
	IssueInvoice(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotReq.CorporateID != corporateID {
		t.Fatalf("unexpected corporate id %s", gotReq.CorporateID)
	}
	if gotReq.Period.From != nil || gotReq.Period.Month != 0 {
		t.Fatalf("expected empty period for unpaid bills, got %+v", gotReq.Period)
	}
	if gotReq.Actor != "accounts@ocl.test" {
		t.Fatalf("unexpected actor %q", gotReq.Actor)
	}
}

func TestIssueInvoiceWithMonth(t *testing.T) {
	var gotReq internalsettlements.InvoiceRequest
	svc := stubService{
		issueFn: func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
			gotReq = req
			return sampleInvoice(), nil
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":3,"year":2025,"issue_date":"2025-04-01"}`)))
	req = withParam(req, "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	IssueInvoice(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotReq.Period.Month != 3 || gotReq.Period.Year != 2025 {
		t.Fatalf("unexpected period %+v", gotReq.Period)
	}
	if gotReq.IssueDate == nil || gotReq.IssueDate.Day() != 1 {
		t.Fatalf("expected issue date")
	}
}

func TestIssueInvoiceConflict(t *testing.T) {
	svc := stubService{
		issueFn: func(ctx context.Context, req internalsettlements.InvoiceRequest) (*internalsettlements.Invoice, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipments already invoiced")
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	req = withParam(req, "corporateId", uuid.NewString())
	resp := httptest.NewRecorder()
	IssueInvoice(svc, FromURLParam("corporateId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestMarkInvoicePaidDecodesNumber(t *testing.T) {
	var gotNumber string
	svc := stubService{
		paidFn: func(ctx context.Context, number, actor string) (*models.InvoiceRecord, error) {
			gotNumber = number
			return &models.InvoiceRecord{InvoiceNumber: number, Status: enums.InvoiceStatusPaid}, nil
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/", nil))
	req = withParam(req, "invoiceNumber", "OCL%2F2025-26%2F20250402-0007")
	resp := httptest.NewRecorder()
	MarkInvoicePaid(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotNumber != "OCL/2025-26/20250402-0007" {
		t.Fatalf("unexpected number %q", gotNumber)
	}
}

func TestMedicineSettlementDefaultsToCurrentMonth(t *testing.T) {
	userID := uuid.New()
	var gotMonth, gotYear int
	svc := stubService{
		medicineFn: func(ctx context.Context, id uuid.UUID, month, year int) (*internalsettlements.MedicineSettlement, error) {
			gotMonth, gotYear = month, year
			return &internalsettlements.MedicineSettlement{MedicineUserID: id}, nil
		},
	}
	now := func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	req := asPortal(httptest.NewRequest(http.MethodGet, "/", nil), enums.ActorRoleMedicine, userID)
	resp := httptest.NewRecorder()
	medicineSettlement(svc, FromToken(), nil, now).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotMonth != 6 || gotYear != 2025 {
		t.Fatalf("expected June 2025 got %d/%d", gotMonth, gotYear)
	}
}

func TestMedicineSettlementRequiresMonthAndYearTogether(t *testing.T) {
	req := asAdmin(httptest.NewRequest(http.MethodGet, "/?month=4", nil))
	req = withParam(req, "medicineUserId", uuid.NewString())
	resp := httptest.NewRecorder()
	MedicineSettlement(stubService{}, FromURLParam("medicineUserId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSetOCLCharge(t *testing.T) {
	userID := uuid.New()
	var got internalsettlements.OCLChargeInput
	svc := stubService{
		chargeFn: func(ctx context.Context, input internalsettlements.OCLChargeInput) (*models.OCLCharge, error) {
			got = input
			return &models.OCLCharge{MedicineUserID: input.MedicineUserID, Amount: input.Amount}, nil
		},
	}
	req := asAdmin(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"month":4,"year":2025,"amount":"650.50"}`)))
	req = withParam(req, "medicineUserId", userID.String())
	resp := httptest.NewRecorder()
	SetOCLCharge(svc, FromURLParam("medicineUserId"), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.MedicineUserID != userID || got.Month != 4 || got.Year != 2025 {
		t.Fatalf("unexpected input %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("650.50")) {
		t.Fatalf("unexpected amount %s", got.Amount)
	}
}

func TestSetOCLChargeRejectsBadAmount(t *testing.T) {
	for _, body := range []string{`{"month":4,"year":2025,"amount":"lots"}`, `{"month":0,"year":2025,"amount":"10"}`, `{"month":4,"year":2025}`} {
		req := asAdmin(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)))
		req = withParam(req, "medicineUserId", uuid.NewString())
		resp := httptest.NewRecorder()
		SetOCLCharge(stubService{}, FromURLParam("medicineUserId"), nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", body, resp.Code)
		}
	}
}
