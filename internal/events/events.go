package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names a record mutation.
type Kind string

const (
	KindCreated Kind = "item.created"
	KindUpdated Kind = "item.updated"
	KindDeleted Kind = "item.deleted"
)

// Event is the payload sent from the API -> SQS -> worker after a
// successful mutation.
type Event struct {
	EventID    string    `json:"event_id"`
	Kind       Kind      `json:"kind"`
	ItemID     int64     `json:"item_id"`
	Category   string    `json:"category,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps a fresh event id and the current time.
func New(kind Kind, itemID int64, category string) Event {
	return Event{
		EventID:    uuid.NewString(),
		Kind:       kind,
		ItemID:     itemID,
		Category:   category,
		OccurredAt: time.Now().UTC(),
	}
}

// Valid reports whether e carries the fields the worker relies on.
func (e Event) Valid() bool {
	switch e.Kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return false
	}
	return e.EventID != "" && e.ItemID > 0
}

// Notifier delivers mutation events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Discard drops every event; used when no queue is configured.
type Discard struct{}

func (Discard) Notify(context.Context, Event) error { return nil }
