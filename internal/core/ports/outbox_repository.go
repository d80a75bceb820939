package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OutboxMessage is a domain event waiting to be handed to the event bus.
type OutboxMessage struct {
	ID          kernel.UUID
	AggregateID kernel.UUID
	EventName   string
	Payload     []byte
	OccurredAt  time.Time
	Attempts    int
	LastError   string
}

// OutboxRepository stores events written in the same transaction as the state
// change that produced them. A relay reads them back and publishes them.
type OutboxRepository interface {
	// Add stores the events for later delivery.
	Add(ctx context.Context, events ...order.Event) error

	// ListPending returns up to limit undelivered messages with fewer than
	// maxAttempts failed attempts, oldest first, locking them for the current
	// transaction. Rows locked by another relay are skipped.
	ListPending(ctx context.Context, limit, maxAttempts int) ([]OutboxMessage, error)

	// MarkDispatched records successful delivery.
	MarkDispatched(ctx context.Context, id kernel.UUID, at time.Time) error

	// MarkFailed increments the attempt counter and stores the last error.
	MarkFailed(ctx context.Context, id kernel.UUID, cause error) error
}
