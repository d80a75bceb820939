package queries

import (
	"context"
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusProgressQueryHandler_Handle(t *testing.T) {
	registry, err := services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), nil)
	require.NoError(t, err)
	handler := NewGetStatusProgressQueryHandler(registry)

	tests := []struct {
		status   string
		progress int
		terminal bool
	}{
		{"INTAKE", 0, false},
		{"QC", 70, false},
		{"CLOSED", 100, true},
		{"ON_HOLD", 0, false},
		{"CANCELLED", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			query, err := NewGetStatusProgressQuery(tt.status)
			require.NoError(t, err)

			resp, err := handler.Handle(context.Background(), query)

			require.NoError(t, err)
			assert.Equal(t, tt.progress, resp.Progress)
			assert.Equal(t, tt.terminal, resp.Terminal)
		})
	}
}

func TestGetStatusProgressQueryHandler_WorkspaceOverride(t *testing.T) {
	def := services.DefaultWorkflowDefinition()
	def.Progress[order.QC] = 75
	custom, err := services.NewOrderWorkflow(def)
	require.NoError(t, err)

	workspace := kernel.NewUUID()
	registry, err := services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), map[kernel.UUID]*services.OrderWorkflow{
		workspace: custom,
	})
	require.NoError(t, err)
	handler := NewGetStatusProgressQueryHandler(registry)

	query, err := NewGetStatusProgressQuery("QC")
	require.NoError(t, err)

	resp, err := handler.Handle(context.Background(), query.WithWorkspace(workspace))
	require.NoError(t, err)
	assert.Equal(t, 75, resp.Progress)

	resp, err = handler.Handle(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 70, resp.Progress)
}

func TestGetStatusProgressQueryHandler_RejectsZeroQuery(t *testing.T) {
	registry, err := services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), nil)
	require.NoError(t, err)

	_, err = NewGetStatusProgressQueryHandler(registry).Handle(context.Background(), GetStatusProgressQuery{})

	assert.ErrorIs(t, err, ErrGetStatusProgressQueryIsNotConstructed)
}
