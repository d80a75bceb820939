package eventbus

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
)

// AuditSubscriber writes one structured line per status change.
type AuditSubscriber struct {
	logger *slog.Logger
}

func NewAuditSubscriber(logger *slog.Logger) *AuditSubscriber {
	return &AuditSubscriber{logger: logger.With("component", "audit")}
}

func (a *AuditSubscriber) Handle(ctx context.Context, event order.Event) error {
	changed, ok := event.(order.StatusChanged)
	if !ok {
		a.logger.WarnContext(ctx, "unexpected event type", "event", event.EventName())
		return nil
	}

	a.logger.InfoContext(ctx, "order status changed",
		"event_id", changed.ID.String(),
		"order_id", changed.OrderID.String(),
		"workspace_id", changed.WorkspaceID.String(),
		"po_number", changed.PONumber,
		"from", changed.FromStatus.String(),
		"to", changed.ToStatus.String(),
		"actor_id", changed.ActorID,
		"actor_role", changed.ActorRole.String(),
		"at", changed.Timestamp,
	)
	return nil
}
