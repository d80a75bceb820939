package commands_test

import (
	"strings"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionOrderCommand(t *testing.T) {
	actor := mustActor(t, "u-1", order.CSR)
	id := kernel.NewUUID()

	t.Run("valid input", func(t *testing.T) {
		cmd, err := commands.NewTransitionOrderCommand(id, order.DesignPending, actor, "  brief received ")

		require.NoError(t, err)
		assert.Equal(t, id, cmd.OrderID())
		assert.Equal(t, order.DesignPending, cmd.Target())
		assert.Equal(t, actor, cmd.Actor())
		assert.Equal(t, "brief received", cmd.Note())

		_, ok := cmd.ExpectedStatus()
		assert.False(t, ok)
	})

	t.Run("expected status is carried on a copy", func(t *testing.T) {
		cmd, err := commands.NewTransitionOrderCommand(id, order.DesignPending, actor, "")
		require.NoError(t, err)

		guarded := cmd.WithExpectedStatus(order.Intake)

		s, ok := guarded.ExpectedStatus()
		assert.True(t, ok)
		assert.Equal(t, order.Intake, s)
		_, ok = cmd.ExpectedStatus()
		assert.False(t, ok)
		require.NoError(t, guarded.Validate())
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(id, order.Status(99), actor, "")
		require.ErrorIs(t, err, order.ErrInvalidState)
	})

	t.Run("unconstructed actor", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(id, order.QC, order.Actor{}, "")
		require.ErrorIs(t, err, order.ErrActorIsNotConstructed)
	})

	t.Run("note too long", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(id, order.QC, actor, strings.Repeat("x", order.MaxNoteLength+1))
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		require.ErrorIs(t, commands.TransitionOrderCommand{}.Validate(), commands.ErrTransitionOrderCommandIsNotConstructed)
	})
}
