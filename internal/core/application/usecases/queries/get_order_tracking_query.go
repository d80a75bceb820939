package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// GetOrderTrackingQuery fetches what a client or CSR sees on the order's
// tracking page: current status, progress and the full status history.
type GetOrderTrackingQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderTrackingQuery(orderID kernel.UUID) (GetOrderTrackingQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderTrackingQuery{}, err
	}
	return GetOrderTrackingQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderTrackingQueryResponse is an order with its derived progress and history.
type GetOrderTrackingQueryResponse struct {
	OrderID     kernel.UUID
	WorkspaceID kernel.UUID
	PONumber    string
	Status      order.Status
	Progress    int
	Deadline    time.Time
	CreatedAt   time.Time
	History     []TrackingHistoryItem
}

// TrackingHistoryItem is one committed transition.
type TrackingHistoryItem struct {
	Sequence   int
	FromStatus order.Status
	Status     order.Status
	ActorID    string
	ActorRole  order.Role
	Note       string
	At         time.Time
}
