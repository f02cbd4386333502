// Package notify posts dashboard action events to configured webhooks.
// Delivery is best effort: one POST per service per event, no retries.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event describes one user-triggered action and its outcome.
type Event struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	Object string    `json:"object"`
	OK     bool      `json:"ok"`
	Detail string    `json:"detail,omitempty"`
	Time   time.Time `json:"time"`
}

// NewEvent builds an Event for the given action and object.
func NewEvent(action, object string, ok bool, detail string) Event {
	return Event{
		ID:     uuid.NewString(),
		Action: action,
		Object: object,
		OK:     ok,
		Detail: detail,
		Time:   time.Now().UTC(),
	}
}

// Title renders the short line used by chat notifiers.
func (e Event) Title() string {
	outcome := "succeeded"
	if !e.OK {
		outcome = "failed"
	}
	return fmt.Sprintf("dockdeck: %s %s %s", e.Action, e.Object, outcome)
}

// Message renders the body used by chat notifiers.
func (e Event) Message() string {
	msg := fmt.Sprintf("action=%s object=%s ok=%t id=%s", e.Action, e.Object, e.OK, e.ID)
	if e.Detail != "" {
		msg += "\n" + e.Detail
	}
	return msg
}

// Service is the interface all notifiers must implement
type Service interface {
	Send(ctx context.Context, event Event) error
	Name() string
}
