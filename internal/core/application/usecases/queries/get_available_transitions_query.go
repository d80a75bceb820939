// Package queries holds read-only use cases. Handlers read with raw SQL
// through GORM and never open a write transaction.
package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetAvailableTransitionsQueryIsNotConstructed = errors.New(
	"GetAvailableTransitionsQuery must be created via NewGetAvailableTransitionsQuery constructor",
)

// GetAvailableTransitionsQuery asks which next statuses role may move an order to.
//
// Example:
//
//	query, err := NewGetAvailableTransitionsQuery(orderID, order.Designer)
//	options, err := handler.Handle(ctx, query)
//	for _, opt := range options {
//	    fmt.Printf("%s: %s\n", opt.Status, opt.Label)
//	}
type GetAvailableTransitionsQuery struct {
	orderID kernel.UUID
	role    order.Role

	guard guard.ConstructorGuard
}

func NewGetAvailableTransitionsQuery(orderID kernel.UUID, role order.Role) (GetAvailableTransitionsQuery, error) {
	if err := errors.Join(orderID.Validate(), role.Validate()); err != nil {
		return GetAvailableTransitionsQuery{}, err
	}
	return GetAvailableTransitionsQuery{
		orderID: orderID,
		role:    role,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableTransitionsQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableTransitionsQueryIsNotConstructed)
}

func (q GetAvailableTransitionsQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetAvailableTransitionsQuery) Role() order.Role {
	return q.role
}

// AvailableTransition is one action offered to the caller.
type AvailableTransition struct {
	Status      order.Status
	Label       string
	Description string
}
