package interfaces

import "context"

// EventPublisher delivers one ledger event. Events sharing a key keep their order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
