// Package pubsub provides a small generic event bus used to fan out history
// changes and log lines to interested listeners.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// ExecutedEvent is published after a command is applied for the first time.
	ExecutedEvent EventType = "executed"
	// UndoneEvent is published after a command is reversed.
	UndoneEvent EventType = "undone"
	// RedoneEvent is published after a reversed command is re-applied.
	RedoneEvent EventType = "redone"
	// ClearedEvent is published when the history stacks are emptied.
	ClearedEvent EventType = "cleared"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type    EventType
	Payload T
	// Seq is 1 for the first event a broker publishes and grows by one per
	// Publish, whether or not any subscriber received it.
	Seq       uint64
	Timestamp time.Time
}

// Missed reports how many events were published between prev and e.
// A zero prev means nothing has been received yet.
func (e Event[T]) Missed(prev uint64) uint64 {
	if prev == 0 || e.Seq <= prev {
		return 0
	}
	return e.Seq - prev - 1
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes typed payloads.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
