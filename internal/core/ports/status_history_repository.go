package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// StatusHistoryRepository stores the append-only audit trail of transitions.
// Entries are never updated or deleted.
type StatusHistoryRepository interface {
	// Add appends one entry. A second entry with the same (order, sequence)
	// is rejected with order.ErrTransitionConflict.
	Add(ctx context.Context, entry *order.StatusHistoryEntry) error

	// ListByOrder returns the entries of an order by ascending sequence.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.StatusHistoryEntry, error)
}
