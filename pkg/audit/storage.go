package audit

import "context"

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}

// BatchStorage persists events in bulk. Implementations should be atomic:
// either every event in the batch is stored or none is.
type BatchStorage interface {
	StoreBatch(ctx context.Context, events []Event) error
}
