package queries

import (
	"context"

	"orderflow/internal/core/domain/services"
)

// GetStatusProgressQueryHandler answers from the workflow tables alone;
// progress is never stored.
type GetStatusProgressQueryHandler struct {
	workflows *services.WorkflowRegistry
}

func NewGetStatusProgressQueryHandler(workflows *services.WorkflowRegistry) GetStatusProgressQueryHandler {
	return GetStatusProgressQueryHandler{workflows: workflows}
}

func (h GetStatusProgressQueryHandler) Handle(
	_ context.Context,
	query GetStatusProgressQuery,
) (GetStatusProgressQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStatusProgressQueryResponse{}, err
	}

	workflow := h.workflows.Default()
	if query.workspace != nil {
		workflow = h.workflows.For(*query.workspace)
	}

	pct, err := workflow.Progress(query.Status())
	if err != nil {
		return GetStatusProgressQueryResponse{}, err
	}

	return GetStatusProgressQueryResponse{
		Status:   query.Status(),
		Progress: pct,
		Terminal: workflow.IsTerminal(query.Status()),
	}, nil
}
