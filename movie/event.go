package movie

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated EventType = "movie.created"
	EventUpdated EventType = "movie.updated"
	EventDeleted EventType = "movie.deleted"
)

// Event is emitted after a mutation has been applied to the collection.
type Event struct {
	Type       EventType `json:"type"`
	Movie      Movie     `json:"movie"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers events to interested parties. Delivery is best
// effort; a failed publish never rolls back the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}
