// Package notify pushes session events to the live reviewer dashboard.
// Publishing is fire-and-forget: failures are logged and never propagated
// into the interview flow.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"go-interview-backend/pkg/logger"
)

// Channel is the Redis channel dashboard consumers subscribe to.
const Channel = "interview.events"

// Event is the wire shape of one dashboard notification.
type Event struct {
	Type       string         `json:"type"`
	SessionID  string         `json:"session_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop is used when Redis is unconfigured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Publish(context.Context, Event) {}

func marshalEvent(event Event) ([]byte, bool) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Warn("drop unmarshalable dashboard event", "type", event.Type, "error", err)
		return nil, false
	}
	return data, true
}
