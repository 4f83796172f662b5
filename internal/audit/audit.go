// Package audit keeps a structured log of every attendance change, so a
// disputed presence can be traced back to the photo commit or manual mark
// that produced it.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// Event represents one audited change
type Event struct {
	ID          uuid.UUID       `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	ClassroomID uuid.UUID       `json:"classroom_id"`
	Type        ws.EventType    `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Trail writes audit events through slog. It satisfies the service
// publisher interface and is fanned out next to the websocket hub.
type Trail struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewTrail creates a new audit trail on top of logger
func NewTrail(logger *slog.Logger) *Trail {
	return &Trail{
		logger: logger.With("component", "audit"),
		now:    time.Now,
	}
}

// Publish records an event. Payloads that cannot be encoded are logged
// without data rather than dropped.
func (t *Trail) Publish(classroomID uuid.UUID, eventType ws.EventType, data interface{}) {
	event := Event{
		ID:          uuid.New(),
		Timestamp:   t.now().UTC(),
		ClassroomID: classroomID,
		Type:        eventType,
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			t.logger.Error("failed to marshal audit data",
				slog.String("event_type", string(eventType)),
				slog.String("error", err.Error()),
			)
		} else {
			event.Data = raw
		}
	}

	t.Log(context.Background(), event)
}

// Log writes one event
func (t *Trail) Log(ctx context.Context, event Event) {
	t.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("classroom_id", event.ClassroomID.String()),
		slog.Time("timestamp", event.Timestamp),
		slog.String("event_data", string(event.Data)),
	)
}
