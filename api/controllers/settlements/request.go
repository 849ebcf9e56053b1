package settlements

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oclservices/ocl-backend/api/middleware"
	"github.com/oclservices/ocl-backend/api/validators"
	internalsettlements "github.com/oclservices/ocl-backend/internal/settlements"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// idResolver extracts the billing entity a request is about.
type idResolver func(r *http.Request) (uuid.UUID, error)

// FromURLParam reads the entity id from a chi path parameter (admin routes).
func FromURLParam(name string) idResolver {
	return func(r *http.Request) (uuid.UUID, error) {
		raw := strings.TrimSpace(chi.URLParam(r, name))
		if raw == "" {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
		}
		return id, nil
	}
}

// FromToken reads the entity id the access token is scoped to (portal routes).
func FromToken() idResolver {
	return func(r *http.Request) (uuid.UUID, error) {
		raw := middleware.EntityIDFromContext(r.Context())
		if raw == "" {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "token is not scoped to an account")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid account scope")
		}
		return id, nil
	}
}

type periodPayload struct {
	From      *string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To        *string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Month     int     `json:"month" validate:"omitempty,min=1,max=12"`
	Year      int     `json:"year" validate:"omitempty,min=2000,max=9999"`
	IssueDate *string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
}

type oclChargeRequest struct {
	Month  int    `json:"month" validate:"required,min=1,max=12"`
	Year   int    `json:"year" validate:"required,min=2000,max=9999"`
	Amount string `json:"amount" validate:"required"`
}

func (p periodPayload) query() (internalsettlements.PeriodQuery, error) {
	from, err := parseDate("from", p.From)
	if err != nil {
		return internalsettlements.PeriodQuery{}, err
	}
	to, err := parseDate("to", p.To)
	if err != nil {
		return internalsettlements.PeriodQuery{}, err
	}
	return internalsettlements.PeriodQuery{From: from, To: to, Month: p.Month, Year: p.Year}, nil
}

// parsePeriodQuery reads from/to (YYYY-MM-DD) or month/year from the query string.
func parsePeriodQuery(r *http.Request) (internalsettlements.PeriodQuery, error) {
	month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
	if err != nil {
		return internalsettlements.PeriodQuery{}, err
	}
	year, err := validators.ParseQueryInt(r, "year", 0, 2000, 9999)
	if err != nil {
		return internalsettlements.PeriodQuery{}, err
	}
	payload := periodPayload{Month: month, Year: year}
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		payload.From = &raw
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		payload.To = &raw
	}
	return payload.query()
}

func parseIssueDate(r *http.Request) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("issue_date"))
	if raw == "" {
		return nil, nil
	}
	return parseDate("issue_date", &raw)
}

func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").
			WithDetails(map[string]any{"field": field, "format": dateLayout})
	}
	return &parsed, nil
}

// parseMonth defaults to the current month when neither month nor year is given.
func parseMonth(r *http.Request, now time.Time) (int, int, error) {
	month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
	if err != nil {
		return 0, 0, err
	}
	year, err := validators.ParseQueryInt(r, "year", 0, 2000, 9999)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case month == 0 && year == 0:
		return int(now.Month()), now.Year(), nil
	case month == 0 || year == 0:
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "month and year must be supplied together")
	}
	return month, year, nil
}

func parseInvoiceNumber(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "invoiceNumber")
	// Numbers contain slashes, so clients send them percent-encoded.
	number, err := url.PathUnescape(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice number")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invoice number is required")
	}
	return number, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal number").
			WithDetails(map[string]any{"field": "amount"})
	}
	return amount, nil
}

func pdfFilename(number string) string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(number) + ".pdf"
}

// decodeOptionalBody treats an empty body as the zero request.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return validators.DecodeJSONBody(r, dest)
}
