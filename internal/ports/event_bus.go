package ports

import "context"

type Event struct {
	ID      string
	Payload []byte
}

// EventBus decouples the callback flow from the settlement watcher.
// Delivery is in-process, at-least-once.
type EventBus interface {
	Publish(topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (<-chan Event, error)
	Close() error
}
