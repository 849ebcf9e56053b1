package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
)

// MaxNotesLength bounds the free-text notes carried by an entry.
const MaxNotesLength = 500

// CreateInput carries everything needed to open a new entry.
type CreateInput struct {
	Source       Source
	Work         enums.AssignmentWork
	Orders       []OrderRef
	CourierBoyID *uuid.UUID
	Notes        *string
	Actor        string
}

// AssignInput attaches (or re-attaches) a courier to an entry.
type AssignInput struct {
	EntryID      uuid.UUID
	CourierBoyID uuid.UUID
	Actor        string
}

// StatusInput moves an entry along its lifecycle. When CourierScope is set the
// caller is that courier and may only touch entries assigned to them.
type StatusInput struct {
	EntryID      uuid.UUID
	Status       enums.AssignmentStatus
	Notes        *string
	Actor        string
	CourierScope *uuid.UUID
}

// ListFilters narrows list queries. Nil fields are ignored; the rest are ANDed.
type ListFilters struct {
	Status         *enums.AssignmentStatus
	Type           *enums.AssignmentType
	Work           *enums.AssignmentWork
	CourierBoyID   *uuid.UUID
	CorporateID    *uuid.UUID
	MedicineUserID *uuid.UUID
}

// EntryList is one page of entries sorted by assigned_at descending.
type EntryList struct {
	Entries []models.AssignmentEntry `json:"entries"`
	Limit   int                      `json:"limit"`
	Offset  int                      `json:"offset"`
	HasMore bool                     `json:"has_more"`
}

// EventKind labels a StatusEvent.
type EventKind string

const (
	EventCreated         EventKind = "created"
	EventCourierAssigned EventKind = "courier_assigned"
	EventStatusChanged   EventKind = "status_changed"
)

// StatusEvent is published on the in-process bus after a change is committed.
type StatusEvent struct {
	Kind         EventKind              `json:"kind"`
	EntryID      uuid.UUID              `json:"entry_id"`
	Type         enums.AssignmentType   `json:"type"`
	From         enums.AssignmentStatus `json:"from,omitempty"`
	To           enums.AssignmentStatus `json:"to"`
	CourierBoyID *uuid.UUID             `json:"courier_boy_id,omitempty"`
	Actor        string                 `json:"actor,omitempty"`
	At           time.Time              `json:"at"`
}
