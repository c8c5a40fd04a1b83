package journal

import (
	"context"
	"fmt"
	"time"
)

const (
	ActionAdd    = "added"
	ActionRemove = "removed"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Entry is one audit record of a store operation. Every execution builds its
// own entry slice; entries are never shared between independent calls.
type Entry struct {
	ID       string
	At       time.Time
	Action   string
	Item     string
	Quantity int
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s %d of %s", e.At.Format(time.RFC3339), e.Action, e.Quantity, e.Item)
}
