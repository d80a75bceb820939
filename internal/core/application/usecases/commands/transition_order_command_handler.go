package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// TransitionOrderResult is the state of the order after a committed transition.
type TransitionOrderResult struct {
	Status   order.Status
	Progress int
	Version  int
}

// TransitionOrderCommandHandler performs a status change.
//
// The order row, its history entry and the StatusChanged outbox message are
// written in one transaction. The status update is a compare-and-swap on the
// version read at the start, so when two requests race from the same prior
// state exactly one commits and the other receives order.ErrTransitionConflict.
// Event delivery happens later through the outbox relay and cannot undo a
// committed transition.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(uowFactory, registry)
//	res, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):         // 404
//	case errors.Is(err, order.ErrUnauthorizedTransition): // 403
//	case errors.Is(err, order.ErrTransitionConflict):     // 409, reload and retry
//	}
type TransitionOrderCommandHandler struct {
	uowFactory TransitionUoWFactory
	workflows  *services.WorkflowRegistry
	now        func() time.Time
}

// NewTransitionOrderCommandHandler creates a handler that resolves each
// order's workflow through workflows.
func NewTransitionOrderCommandHandler(
	uowFactory TransitionUoWFactory,
	workflows *services.WorkflowRegistry,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		workflows:  workflows,
		now:        time.Now,
	}
}

// Handle validates, authorizes and applies the transition.
// Nothing is written when any check fails.
func (h TransitionOrderCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (TransitionOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	if expected, ok := cmd.ExpectedStatus(); ok && expected != o.Status() {
		return TransitionOrderResult{}, order.NewConflictError(
			o.ID().String(), expected.String(), o.Status().String(),
		)
	}

	workflow := h.workflows.For(o.WorkspaceID())
	actor := cmd.Actor()
	if err = workflow.Authorize(o.Status(), cmd.Target(), actor.Role()); err != nil {
		return TransitionOrderResult{}, err
	}

	prevVersion := o.Version()
	entry, err := o.ChangeStatus(cmd.Target(), actor, cmd.Note(), h.now().UTC())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	if err = orderRepo.UpdateStatus(ctx, o, prevVersion); err != nil {
		return TransitionOrderResult{}, err
	}

	if err = uow.StatusHistoryRepository().Add(ctx, entry); err != nil {
		return TransitionOrderResult{}, err
	}

	if err = uow.OutboxRepository().Add(ctx, o.Events()...); err != nil {
		return TransitionOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionOrderResult{}, err
	}
	o.ClearEvents()

	progress, err := workflow.Progress(o.Status())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	return TransitionOrderResult{Status: o.Status(), Progress: progress, Version: o.Version()}, nil
}
