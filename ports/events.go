package ports

import "context"

// EventPublisher publishes events to notify downstream consumers
type EventPublisher interface {
	// PublishCheckIn publishes a committed check-in with its derived state
	PublishCheckIn(ctx context.Context, address, date string, streak, total int) error
}
