package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *services.WorkflowRegistry {
	t.Helper()
	r, err := services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), nil)
	require.NoError(t, err)
	return r
}

type transitionFixture struct {
	uow     *MockUoW
	orders  *MockOrderRepository
	history *MockHistoryRepository
	outbox  *MockOutboxRepository
	factory *MockTransitionUoWFactory
	handler commands.TransitionOrderCommandHandler
}

func newTransitionFixture(t *testing.T) *transitionFixture {
	t.Helper()
	f := &transitionFixture{
		uow:     new(MockUoW),
		orders:  new(MockOrderRepository),
		history: new(MockHistoryRepository),
		outbox:  new(MockOutboxRepository),
		factory: new(MockTransitionUoWFactory),
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.handler = commands.NewTransitionOrderCommandHandler(f.factory, newRegistry(t))
	return f
}

func (f *transitionFixture) assertNothingWritten(t *testing.T) {
	t.Helper()
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.history.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.outbox.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTransitionOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture(t)
	o := restoreOrder(t, order.DesignPending, 3)
	actor := mustActor(t, "designer-1", order.Designer)
	cmd, err := commands.NewTransitionOrderCommand(o.ID(), order.DesignApproval, actor, "proofs v2")
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orders.On("UpdateStatus", ctx, o, 3).Return(nil).Once(),
		f.uow.On("StatusHistoryRepository").Return(f.history).Once(),
		f.history.On("Add", ctx, mock.MatchedBy(func(e *order.StatusHistoryEntry) bool {
			return e.OrderID() == o.ID() &&
				e.Sequence() == 4 &&
				e.FromStatus() == order.DesignPending &&
				e.Status() == order.DesignApproval &&
				e.ActorID() == "designer-1" &&
				e.Note() == "proofs v2"
		})).Return(nil).Once(),
		f.uow.On("OutboxRepository").Return(f.outbox).Once(),
		f.outbox.On("Add", ctx, mock.MatchedBy(func(events []order.Event) bool {
			if len(events) != 1 {
				return false
			}
			e, ok := events[0].(order.StatusChanged)
			return ok && e.ToStatus == order.DesignApproval && e.OrderID == o.ID()
		})).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	res, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.DesignApproval, res.Status)
	assert.Equal(t, 20, res.Progress)
	assert.Equal(t, 4, res.Version)
	assert.Empty(t, o.Events())
	f.uow.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.history.AssertExpectations(t)
	f.outbox.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		current  order.Status
		target   order.Status
		role     order.Role
		expected order.Status
		wantErr  error
	}{
		{"illegal", order.Intake, order.Delivered, order.Admin, order.Unknown, order.ErrIllegalTransition},
		{"unauthorized", order.Intake, order.DesignPending, order.Packer, order.Unknown, order.ErrUnauthorizedTransition},
		{"redundant", order.QC, order.QC, order.Manager, order.Unknown, order.ErrRedundantTransition},
		{"stale expected status", order.DesignPending, order.DesignApproval, order.Designer, order.Intake, order.ErrTransitionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newTransitionFixture(t)
			o := restoreOrder(t, tt.current, 1)
			cmd, err := commands.NewTransitionOrderCommand(o.ID(), tt.target, mustActor(t, "u", tt.role), "")
			require.NoError(t, err)
			if tt.expected != order.Unknown {
				cmd = cmd.WithExpectedStatus(tt.expected)
			}

			mock.InOrder(
				f.uow.On("Begin", ctx).Return(nil).Once(),
				f.uow.On("OrderRepository").Return(f.orders).Once(),
				f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
				f.uow.On("Rollback", ctx).Return(nil).Once(),
			)

			_, err = f.handler.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.current, o.Status())
			assert.Equal(t, 1, o.Version())
			f.assertNothingWritten(t)
			f.uow.AssertExpectations(t)
		})
	}
}

func TestTransitionOrderCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture(t)
	o := restoreOrder(t, order.Intake, 0)
	cmd, _ := commands.NewTransitionOrderCommand(o.ID(), order.DesignPending, mustActor(t, "u", order.CSR), "")

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Get", ctx, o.ID()).Return(nil, errs.NewObjectNotFoundError("order", o.ID())).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.assertNothingWritten(t)
}

func TestTransitionOrderCommandHandler_Handle_LostRace(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture(t)
	o := restoreOrder(t, order.Intake, 0)
	cmd, _ := commands.NewTransitionOrderCommand(o.ID(), order.DesignPending, mustActor(t, "u", order.CSR), "")

	conflict := order.NewConflictError(o.ID().String(), "version 0", "changed")
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orders.On("UpdateStatus", ctx, o, 0).Return(conflict).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err := f.handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrTransitionConflict)
	f.history.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.outbox.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_OutboxErrorRollsBack(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture(t)
	o := restoreOrder(t, order.Intake, 0)
	cmd, _ := commands.NewTransitionOrderCommand(o.ID(), order.OnHold, mustActor(t, "u", order.CSR), "fabric shortage")

	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.orders).Once(),
		f.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		f.orders.On("UpdateStatus", ctx, o, 0).Return(nil).Once(),
		f.uow.On("StatusHistoryRepository").Return(f.history).Once(),
		f.history.On("Add", ctx, mock.Anything).Return(nil).Once(),
		f.uow.On("OutboxRepository").Return(f.outbox).Once(),
		f.outbox.On("Add", ctx, mock.Anything).Return(errors.New("outbox down")).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	_, err := f.handler.Handle(ctx, cmd)

	require.EqualError(t, err, "outbox down")
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockTransitionUoWFactory)
	h := commands.NewTransitionOrderCommandHandler(factory, newRegistry(t))

	_, err := h.Handle(t.Context(), commands.TransitionOrderCommand{})

	require.ErrorIs(t, err, commands.ErrTransitionOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
