package services

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
)

// WorkflowRegistry resolves the workflow of a workspace. Workspaces without an
// override share the fallback workflow.
type WorkflowRegistry struct {
	fallback    *OrderWorkflow
	byWorkspace map[kernel.UUID]*OrderWorkflow
}

// NewWorkflowRegistry copies overrides; later changes to the map have no effect.
func NewWorkflowRegistry(fallback *OrderWorkflow, overrides map[kernel.UUID]*OrderWorkflow) (*WorkflowRegistry, error) {
	if err := fallback.Validate(); err != nil {
		return nil, err
	}

	r := &WorkflowRegistry{
		fallback:    fallback,
		byWorkspace: make(map[kernel.UUID]*OrderWorkflow, len(overrides)),
	}
	var problems []error
	for id, wf := range overrides {
		if err := errors.Join(id.Validate(), wf.Validate()); err != nil {
			problems = append(problems, err)
			continue
		}
		r.byWorkspace[id] = wf
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return r, nil
}

// For returns the workflow configured for workspaceID, or the fallback.
func (r *WorkflowRegistry) For(workspaceID kernel.UUID) *OrderWorkflow {
	if wf, ok := r.byWorkspace[workspaceID]; ok {
		return wf
	}
	return r.fallback
}

// Default returns the fallback workflow.
func (r *WorkflowRegistry) Default() *OrderWorkflow {
	return r.fallback
}
