package events

import "time"

// Event defines the contract for all client events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "search.SET_MATCHES").
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

// StoreEvent is published on the change feed after a mutation is applied.
type StoreEvent struct {
	Module     string
	Mutation   string
	OccurredAt time.Time
}

func (e StoreEvent) EventType() string {
	return e.Module + "." + e.Mutation
}

func (e StoreEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"module":   e.Module,
		"mutation": e.Mutation,
	}
}

func (e StoreEvent) Timestamp() time.Time {
	return e.OccurredAt
}
