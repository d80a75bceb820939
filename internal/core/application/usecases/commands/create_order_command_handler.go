package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// CreateOrderResult identifies the order that was taken in.
type CreateOrderResult struct {
	OrderID  kernel.UUID
	PONumber string
}

// CreateOrderCommandHandler allocates a PO number and stores a new order at
// INTAKE. No history entry is written; history records transitions only.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	res, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order intake failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates a handler for order intake.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Handle runs in one transaction so a rolled back intake gives its sequence
// value back together with the order row.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	seq, err := orderRepo.NextPOSequence(ctx, cmd.BrandID())
	if err != nil {
		return CreateOrderResult{}, err
	}

	poNumber := FormatPONumber(cmd.BrandCode(), seq)
	o, err := order.NewOrder(cmd.OrderID(), cmd.WorkspaceID(), cmd.BrandID(), poNumber, cmd.Deadline(), h.now().UTC())
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = orderRepo.Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{OrderID: o.ID(), PONumber: o.PONumber()}, nil
}

// FormatPONumber renders a brand sequence as CODE-000042.
func FormatPONumber(brandCode string, seq int64) string {
	return fmt.Sprintf("%s-%06d", brandCode, seq)
}
