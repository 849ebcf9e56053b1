package assignments

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/api/validators"
	internalassignments "github.com/oclservices/ocl-backend/internal/assignments"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/pagination"
)

type requesterPayload struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type orderRefPayload struct {
	ShipmentID        *uuid.UUID `json:"shipment_id"`
	MedicineBookingID *uuid.UUID `json:"medicine_booking_id"`
}

type createRequest struct {
	Type           string            `json:"type" validate:"required,oneof=corporate medicine office_user courier_boy"`
	CorporateID    *uuid.UUID        `json:"corporate_id"`
	MedicineUserID *uuid.UUID        `json:"medicine_user_id"`
	Requester      *requesterPayload `json:"requester"`
	Work           string            `json:"work" validate:"required,oneof=pickup delivery both"`
	Orders         []orderRefPayload `json:"orders" validate:"required,min=1,dive"`
	CourierBoyID   *uuid.UUID        `json:"courier_boy_id"`
	Notes          *string           `json:"notes"`
}

type assignRequest struct {
	CourierBoyID uuid.UUID `json:"courier_boy_id" validate:"required"`
}

type statusRequest struct {
	Status string  `json:"status" validate:"required,oneof=pending assigned in_progress completed cancelled"`
	Notes  *string `json:"notes"`
}

func (req createRequest) toInput(actor string) (internalassignments.CreateInput, error) {
	source, err := req.source()
	if err != nil {
		return internalassignments.CreateInput{}, err
	}
	work, err := enums.ParseAssignmentWork(req.Work)
	if err != nil {
		return internalassignments.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid work")
	}

	refs := make([]internalassignments.OrderRef, 0, len(req.Orders))
	for i, order := range req.Orders {
		ref, err := internalassignments.NewOrderRef(order.ShipmentID, order.MedicineBookingID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return internalassignments.CreateInput{}, typed.WithDetails(map[string]any{"orders": i})
			}
			return internalassignments.CreateInput{}, err
		}
		refs = append(refs, ref)
	}

	return internalassignments.CreateInput{
		Source:       source,
		Work:         work,
		Orders:       refs,
		CourierBoyID: req.CourierBoyID,
		Notes:        req.Notes,
		Actor:        actor,
	}, nil
}

func (req createRequest) source() (internalassignments.Source, error) {
	kind, err := enums.ParseAssignmentType(req.Type)
	if err != nil {
		return internalassignments.Source{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}

	switch kind {
	case enums.AssignmentTypeCorporate:
		if req.CorporateID == nil {
			return internalassignments.Source{}, pkgerrors.New(pkgerrors.CodeValidation, "corporate_id is required for corporate assignments")
		}
		return internalassignments.NewCorporateSource(*req.CorporateID)
	case enums.AssignmentTypeMedicine:
		if req.MedicineUserID == nil {
			return internalassignments.Source{}, pkgerrors.New(pkgerrors.CodeValidation, "medicine_user_id is required for medicine assignments")
		}
		return internalassignments.NewMedicineSource(*req.MedicineUserID)
	default:
		if req.Requester == nil {
			return internalassignments.Source{}, pkgerrors.New(pkgerrors.CodeValidation, "requester is required for "+string(kind)+" assignments")
		}
		name := validators.SanitizeString(req.Requester.Name, 120)
		email := validators.SanitizeString(req.Requester.Email, 254)
		phone := validators.SanitizeString(req.Requester.Phone, 20)
		if kind == enums.AssignmentTypeOfficeUser {
			return internalassignments.NewOfficeUserSource(name, email, phone)
		}
		return internalassignments.NewCourierBoySource(name, email, phone)
	}
}

func parseEntryID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignment id")
	}
	return id, nil
}

func parsePage(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, maxOffset)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Limit: limit, Offset: offset}, nil
}

const maxOffset = 1_000_000

func buildFilters(r *http.Request) (internalassignments.ListFilters, error) {
	var filters internalassignments.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseAssignmentStatus(raw)
		if err != nil {
			return filters, invalidFilter("status", err)
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		kind, err := enums.ParseAssignmentType(raw)
		if err != nil {
			return filters, invalidFilter("type", err)
		}
		filters.Type = &kind
	}
	if raw := strings.TrimSpace(query.Get("work")); raw != "" {
		work, err := enums.ParseAssignmentWork(raw)
		if err != nil {
			return filters, invalidFilter("work", err)
		}
		filters.Work = &work
	}

	for key, dest := range map[string]**uuid.UUID{
		"courier_id":       &filters.CourierBoyID,
		"corporate_id":     &filters.CorporateID,
		"medicine_user_id": &filters.MedicineUserID,
	} {
		raw := strings.TrimSpace(query.Get(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, invalidFilter(key, err)
		}
		*dest = &id
	}
	return filters, nil
}

func invalidFilter(field string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid filter").WithDetails(map[string]any{"field": field})
}
