package http

import (
	"time"

	"orderflow/internal/core/application/usecases/queries"
)

type newOrderRequest struct {
	OrderID     string    `json:"order_id"`
	WorkspaceID string    `json:"workspace_id"`
	BrandID     string    `json:"brand_id"`
	BrandCode   string    `json:"brand_code"`
	Deadline    time.Time `json:"deadline"`
}

type createdOrderResponse struct {
	OrderID  string `json:"order_id"`
	PONumber string `json:"po_number"`
}

type transitionRequest struct {
	Target         string `json:"target"`
	Note           string `json:"note"`
	ExpectedStatus string `json:"expected_status"`
}

type transitionResponse struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Version  int    `json:"version"`
}

type transitionOptionResponse struct {
	Status      string `json:"status"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type historyItemResponse struct {
	Sequence   int       `json:"sequence"`
	FromStatus string    `json:"from_status"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	ActorRole  string    `json:"actor_role"`
	Note       string    `json:"note,omitempty"`
	At         time.Time `json:"at"`
}

type trackingResponse struct {
	OrderID     string                `json:"order_id"`
	WorkspaceID string                `json:"workspace_id"`
	PONumber    string                `json:"po_number"`
	Status      string                `json:"status"`
	Progress    int                   `json:"progress"`
	Deadline    time.Time             `json:"deadline"`
	CreatedAt   time.Time             `json:"created_at"`
	History     []historyItemResponse `json:"history"`
}

type statusProgressResponse struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Terminal bool   `json:"terminal"`
}

func toTrackingResponse(r queries.GetOrderTrackingQueryResponse) trackingResponse {
	history := make([]historyItemResponse, 0, len(r.History))
	for _, h := range r.History {
		history = append(history, historyItemResponse{
			Sequence:   h.Sequence,
			FromStatus: h.FromStatus.String(),
			Status:     h.Status.String(),
			ActorID:    h.ActorID,
			ActorRole:  h.ActorRole.String(),
			Note:       h.Note,
			At:         h.At,
		})
	}
	return trackingResponse{
		OrderID:     r.OrderID.String(),
		WorkspaceID: r.WorkspaceID.String(),
		PONumber:    r.PONumber,
		Status:      r.Status.String(),
		Progress:    r.Progress,
		Deadline:    r.Deadline,
		CreatedAt:   r.CreatedAt,
		History:     history,
	}
}
