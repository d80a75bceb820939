package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableTransitionsQueryHandler intersects the workflow's adjacency list
// for the order's current status with what the role may enter.
type GetAvailableTransitionsQueryHandler struct {
	db        *gorm.DB
	workflows *services.WorkflowRegistry
}

func NewGetAvailableTransitionsQueryHandler(
	db *gorm.DB,
	workflows *services.WorkflowRegistry,
) GetAvailableTransitionsQueryHandler {
	return GetAvailableTransitionsQueryHandler{db: db, workflows: workflows}
}

// Handle returns an empty, non-nil slice when nothing is available.
// A missing order fails with errs.ErrObjectNotFound.
func (h GetAvailableTransitionsQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableTransitionsQuery,
) ([]AvailableTransition, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	status, workspaceID, err := h.currentStatus(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	options, err := h.workflows.For(workspaceID).AvailableTransitions(status, query.Role())
	if err != nil {
		return nil, err
	}

	result := make([]AvailableTransition, 0, len(options))
	for _, opt := range options {
		result = append(result, AvailableTransition{
			Status:      opt.Status,
			Label:       opt.Label,
			Description: opt.Description,
		})
	}
	return result, nil
}

func (h GetAvailableTransitionsQueryHandler) currentStatus(
	ctx context.Context,
	orderID kernel.UUID,
) (order.Status, kernel.UUID, error) {
	var (
		name      string
		workspace uuid.UUID
	)
	err := h.db.WithContext(ctx).Raw(`
		SELECT status, workspace_id
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row().Scan(&name, &workspace)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Unknown, kernel.UUID{}, errs.NewObjectNotFoundError("order", orderID.String())
	}
	if err != nil {
		return order.Unknown, kernel.UUID{}, err
	}

	status, err := order.ParseStatus(name)
	if err != nil {
		return order.Unknown, kernel.UUID{}, err
	}
	workspaceID, err := kernel.UUIDFromBytes(workspace[:])
	if err != nil {
		return order.Unknown, kernel.UUID{}, err
	}
	return status, workspaceID, nil
}
