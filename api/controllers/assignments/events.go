package assignments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oclservices/ocl-backend/api/responses"
	internalassignments "github.com/oclservices/ocl-backend/internal/assignments"
	"github.com/oclservices/ocl-backend/pkg/broadcast"
	"github.com/oclservices/ocl-backend/pkg/enums"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/logger"
)

const defaultHeartbeat = 25 * time.Second

type eventSource interface {
	Subscribe(buffer int) *broadcast.Subscription[internalassignments.StatusEvent]
}

// StreamOptions tunes the event stream. Zero values fall back to defaults.
type StreamOptions struct {
	Buffer    int
	Heartbeat time.Duration
}

type eventFilter struct {
	kind      *enums.AssignmentType
	courierID *uuid.UUID
}

func (f eventFilter) match(event internalassignments.StatusEvent) bool {
	if f.kind != nil && event.Type != *f.kind {
		return false
	}
	if f.courierID != nil && (event.CourierBoyID == nil || *event.CourierBoyID != *f.courierID) {
		return false
	}
	return true
}

// Events streams committed status changes as server-sent events. Delivery is
// best effort: a slow client misses events rather than stalling writers.
func Events(source eventSource, opts StreamOptions, logg *logger.Logger) http.HandlerFunc {
	heartbeatEvery := opts.Heartbeat
	if heartbeatEvery <= 0 {
		heartbeatEvery = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "event stream unavailable"))
			return
		}

		filter, err := parseEventFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "streaming unsupported"))
			return
		}

		subscription := source.Subscribe(opts.Buffer)
		defer subscription.Close()

		headers := w.Header()
		headers.Set("Content-Type", "text/event-stream")
		headers.Set("Cache-Control", "no-cache")
		headers.Set("Connection", "keep-alive")
		headers.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if _, err := io.WriteString(w, "retry: 2000\n\n"); err != nil {
			return
		}
		flusher.Flush()

		ctx := r.Context()
		if logg != nil {
			logg.Info(ctx, "assignments.stream.opened")
			defer logg.Info(ctx, "assignments.stream.closed")
		}

		heartbeat := time.NewTicker(heartbeatEvery)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-subscription.C():
				if !ok {
					return
				}
				if !filter.match(event) {
					continue
				}
				if err := writeStatusEvent(w, event); err != nil {
					return
				}
				flusher.Flush()
			case <-heartbeat.C:
				if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func parseEventFilter(r *http.Request) (eventFilter, error) {
	var filter eventFilter
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		kind, err := enums.ParseAssignmentType(raw)
		if err != nil {
			return filter, invalidFilter("type", err)
		}
		filter.kind = &kind
	}
	if raw := strings.TrimSpace(query.Get("courier_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, invalidFilter("courier_id", err)
		}
		filter.courierID = &id
	}
	return filter, nil
}

func writeStatusEvent(w io.Writer, event internalassignments.StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
	return err
}
