package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrGetStatusProgressQueryIsNotConstructed = errors.New(
	"GetStatusProgressQuery must be created via NewGetStatusProgressQuery constructor",
)

// GetStatusProgressQuery asks for the completion percentage of a status.
// An unknown status name fails construction with order.ErrInvalidState.
type GetStatusProgressQuery struct {
	status    order.Status
	workspace *kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetStatusProgressQuery(status string) (GetStatusProgressQuery, error) {
	s, err := order.ParseStatus(status)
	if err != nil {
		return GetStatusProgressQuery{}, err
	}
	return GetStatusProgressQuery{status: s, guard: guard.NewConstructorGuard()}, nil
}

// WithWorkspace evaluates the query against that workspace's workflow.
func (q GetStatusProgressQuery) WithWorkspace(id kernel.UUID) GetStatusProgressQuery {
	q.workspace = &id
	return q
}

func (q GetStatusProgressQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusProgressQueryIsNotConstructed)
}

func (q GetStatusProgressQuery) Status() order.Status {
	return q.status
}

// GetStatusProgressQueryResponse is the progress of one status.
type GetStatusProgressQueryResponse struct {
	Status   order.Status
	Progress int
	Terminal bool
}
