// Package ports defines the contracts between the order workflow core and its
// infrastructure: persistence, transactions and event delivery.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order. The order must be valid and not exist yet.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id.
	// Returns errs.ErrObjectNotFound when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus writes the aggregate's status and version if, and only if,
	// the stored version still equals expectedVersion.
	//
	// Returns order.ErrTransitionConflict when another transaction changed the
	// order first. Callers must treat that as a lost race and roll back.
	//
	// Example:
	//   prev := o.Version()
	//   entry, err := o.ChangeStatus(target, actor, note, now)
	//   ...
	//   if err := repo.UpdateStatus(ctx, o, prev); err != nil {
	//       return err // CONFLICT
	//   }
	UpdateStatus(ctx context.Context, aggregate *order.Order, expectedVersion int) error

	// NextPOSequence atomically allocates the next PO number sequence for a
	// brand, starting at 1. Values are never reused within a brand.
	NextPOSequence(ctx context.Context, brandID kernel.UUID) (int64, error)
}
