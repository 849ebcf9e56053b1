package settlements

import (
	"net/http"
	"strings"
	"time"

	"github.com/oclservices/ocl-backend/api/middleware"
	"github.com/oclservices/ocl-backend/api/responses"
	"github.com/oclservices/ocl-backend/api/validators"
	internalsettlements "github.com/oclservices/ocl-backend/internal/settlements"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/logger"
)

const formatPDF = "pdf"

// CorporateBills returns the billed shipments and tax summary for a corporate client.
func CorporateBills(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		corporateID, err := resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := parsePeriodQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bills, err := svc.CorporateBills(r.Context(), corporateID, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bills)
	}
}

// InvoicePreview renders a provisional invoice as JSON, or as a PDF with format=pdf.
// Nothing is persisted and no invoice number is consumed.
func InvoicePreview(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		corporateID, err := resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := parsePeriodQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		issueDate, err := parseIssueDate(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
		if format != "" && format != "json" && format != formatPDF {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "format must be json or pdf"))
			return
		}

		invoice, err := svc.PreviewInvoice(r.Context(), internalsettlements.InvoiceRequest{
			CorporateID: corporateID,
			Period:      period,
			IssueDate:   issueDate,
			Actor:       middleware.SubjectFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if format == formatPDF {
			writeInvoicePDF(w, r, invoice, logg)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// IssueInvoice assigns a permanent number to the current bills and stores the invoice.
func IssueInvoice(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		corporateID, err := resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req periodPayload
		if err := decodeOptionalBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		period, err := req.query()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		issueDate, err := parseDate("issue_date", req.IssueDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.IssueInvoice(r.Context(), internalsettlements.InvoiceRequest{
			CorporateID: corporateID,
			Period:      period,
			IssueDate:   issueDate,
			Actor:       middleware.SubjectFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"invoice_number": invoice.Number,
				"corporate_id":   corporateID.String(),
				"grand_total":    invoice.Summary.GrandTotal.StringFixed(2),
			})
			logg.Info(ctx, "settlements.invoice.issued")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// MarkInvoicePaid settles an issued invoice and its shipments.
func MarkInvoicePaid(svc internalsettlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		number, err := parseInvoiceNumber(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.MarkInvoicePaid(r.Context(), number, middleware.SubjectFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// MedicineSettlement returns the monthly reconciliation for a medicine user.
func MedicineSettlement(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger) http.HandlerFunc {
	return medicineSettlement(svc, resolve, logg, func() time.Time { return time.Now().UTC() })
}

func medicineSettlement(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		medicineUserID, err := resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, year, err := parseMonth(r, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settlement, err := svc.MedicineSettlement(r.Context(), medicineUserID, month, year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement)
	}
}

// SetOCLCharge stores the manual OCL charge for a medicine user's month.
func SetOCLCharge(svc internalsettlements.Service, resolve idResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		medicineUserID, err := resolve(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req oclChargeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		charge, err := svc.SetOCLCharge(r.Context(), internalsettlements.OCLChargeInput{
			MedicineUserID: medicineUserID,
			Month:          req.Month,
			Year:           req.Year,
			Amount:         amount,
			Actor:          middleware.SubjectFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, charge)
	}
}

func writeInvoicePDF(w http.ResponseWriter, r *http.Request, invoice *internalsettlements.Invoice, logg *logger.Logger) {
	body, err := internalsettlements.RenderInvoicePDF(invoice)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf"))
		return
	}
	responses.WriteFile(w, "application/pdf", pdfFilename(invoice.Number), body)
}
