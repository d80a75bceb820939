package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// EventPublisher hands a domain event to its subscribers.
// Delivery is at least once; subscribers must tolerate duplicates.
type EventPublisher interface {
	Publish(ctx context.Context, event order.Event) error
}
