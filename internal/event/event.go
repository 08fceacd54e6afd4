package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSessionStarted      Type = "session.started"
	TypeSessionEnded        Type = "session.ended"
	TypeInventoryRefreshed  Type = "inventory.refreshed"
	TypeInventoryLoadFailed Type = "inventory.load_failed"
	TypeInventoryUpdated    Type = "inventory.updated"
	TypeCartUpdated         Type = "cart.updated"
	TypeCartCleared         Type = "cart.cleared"
	TypePurchaseFailed      Type = "purchase.failed"
	TypeSweetAdded          Type = "sweet.added"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

func New(t Type, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
