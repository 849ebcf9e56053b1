package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/pkg/db/models"
	"github.com/oclservices/ocl-backend/pkg/enums"
)

var allowedTransitions = map[enums.AssignmentStatus][]enums.AssignmentStatus{
	enums.AssignmentStatusPending:    {enums.AssignmentStatusAssigned, enums.AssignmentStatusCancelled},
	enums.AssignmentStatusAssigned:   {enums.AssignmentStatusInProgress, enums.AssignmentStatusCancelled},
	enums.AssignmentStatusInProgress: {enums.AssignmentStatusCompleted, enums.AssignmentStatusCancelled},
}

// CanTransition reports whether from -> to is in the lifecycle table.
// Terminal statuses have no outgoing edges.
func CanTransition(from, to enums.AssignmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// canAssignCourier reports whether a courier may be (re)attached in the current status.
func canAssignCourier(status enums.AssignmentStatus) bool {
	return status == enums.AssignmentStatusPending || status == enums.AssignmentStatusAssigned
}

// transitionUpdates builds the column updates for moving entry to target. Each
// lifecycle timestamp is written only if it has never been set.
func transitionUpdates(entry *models.AssignmentEntry, target enums.AssignmentStatus, now time.Time) map[string]any {
	updates := map[string]any{"status": target}
	switch target {
	case enums.AssignmentStatusInProgress:
		if entry.StartedAt == nil {
			updates["started_at"] = now
		}
	case enums.AssignmentStatusCompleted:
		if entry.CompletedAt == nil {
			updates["completed_at"] = now
		}
	case enums.AssignmentStatusCancelled:
		if entry.CancelledAt == nil {
			updates["cancelled_at"] = now
		}
	}
	return updates
}

// applyUpdates mirrors persisted column updates onto the in-memory entry.
func applyUpdates(entry *models.AssignmentEntry, updates map[string]any) {
	for column, value := range updates {
		switch column {
		case "status":
			entry.Status = value.(enums.AssignmentStatus)
		case "started_at":
			t := value.(time.Time)
			entry.StartedAt = &t
		case "completed_at":
			t := value.(time.Time)
			entry.CompletedAt = &t
		case "cancelled_at":
			t := value.(time.Time)
			entry.CancelledAt = &t
		case "assigned_at":
			entry.AssignedAt = value.(time.Time)
		case "assigned_by":
			entry.AssignedBy = value.(string)
		case "notes":
			entry.Notes = value.(*string)
		case "courier_boy_id":
			entry.AssignedCourier.CourierBoyID = value.(*uuid.UUID)
		case "courier_name":
			entry.AssignedCourier.Name = value.(string)
		case "courier_phone":
			entry.AssignedCourier.Phone = value.(string)
		case "courier_email":
			entry.AssignedCourier.Email = value.(string)
		case "courier_area":
			entry.AssignedCourier.Area = value.(string)
		}
	}
}
