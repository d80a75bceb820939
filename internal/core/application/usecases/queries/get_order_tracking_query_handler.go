package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderTrackingQueryHandler reads an order and its history in one
// repeatable snapshot so the latest history entry always matches the status.
type GetOrderTrackingQueryHandler struct {
	db        *gorm.DB
	workflows *services.WorkflowRegistry
}

func NewGetOrderTrackingQueryHandler(
	db *gorm.DB,
	workflows *services.WorkflowRegistry,
) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{db: db, workflows: workflows}
}

func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (GetOrderTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	var resp GetOrderTrackingQueryResponse
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var readErr error
		if resp, readErr = readOrder(tx, query.OrderID()); readErr != nil {
			return readErr
		}
		resp.History, readErr = readHistory(tx, query.OrderID())
		return readErr
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	pct, err := h.workflows.For(resp.WorkspaceID).Progress(resp.Status)
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}
	resp.Progress = pct

	return resp, nil
}

func readOrder(tx *gorm.DB, orderID kernel.UUID) (GetOrderTrackingQueryResponse, error) {
	var (
		workspace uuid.UUID
		poNumber  string
		status    string
		deadline  time.Time
		createdAt time.Time
	)
	err := tx.Raw(`
		SELECT workspace_id, po_number, status, deadline, created_at
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row().Scan(&workspace, &poNumber, &status, &deadline, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderTrackingQueryResponse{}, errs.NewObjectNotFoundError("order", orderID.String())
	}
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	workspaceID, err := kernel.UUIDFromBytes(workspace[:])
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}
	current, err := order.ParseStatus(status)
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	return GetOrderTrackingQueryResponse{
		OrderID:     orderID,
		WorkspaceID: workspaceID,
		PONumber:    poNumber,
		Status:      current,
		Deadline:    deadline,
		CreatedAt:   createdAt,
	}, nil
}

func readHistory(tx *gorm.DB, orderID kernel.UUID) ([]TrackingHistoryItem, error) {
	rows, err := tx.Raw(`
		SELECT sequence, from_status, status, actor_id, actor_role, note, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY sequence
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]TrackingHistoryItem, 0)
	for rows.Next() {
		var (
			item           TrackingHistoryItem
			from, to, role string
			note           sql.NullString
		)
		if err = rows.Scan(&item.Sequence, &from, &to, &item.ActorID, &role, &note, &item.At); err != nil {
			return nil, err
		}
		if item.FromStatus, err = order.ParseStatus(from); err != nil {
			return nil, err
		}
		if item.Status, err = order.ParseStatus(to); err != nil {
			return nil, err
		}
		if item.ActorRole, err = order.ParseRole(role); err != nil {
			return nil, err
		}
		item.Note = note.String
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
