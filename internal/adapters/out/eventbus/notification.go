package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/core/domain/model/order"
)

// Notification tells an audience that an order reached a status.
type Notification struct {
	Audience    order.Role
	OrderID     string
	WorkspaceID string
	PONumber    string
	Status      order.Status
	Message     string
}

// Notifier sends a notification through some channel (mail, chat, push).
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// DefaultAudiences maps a status to the roles that act on an order next, plus
// the client on milestones the client cares about.
func DefaultAudiences() map[order.Status][]order.Role {
	return map[order.Status][]order.Role{
		order.Intake:            {order.CSR},
		order.DesignPending:     {order.Designer},
		order.DesignApproval:    {order.Client, order.CSR},
		order.Confirmed:         {order.Planner, order.Client},
		order.ProductionPlanned: {order.Operator},
		order.InProgress:        {order.Operator},
		order.QC:                {order.QCInspector},
		order.Packing:           {order.Packer},
		order.ReadyForDelivery:  {order.Dispatcher, order.Client},
		order.Delivered:         {order.CSR, order.Client},
		order.Closed:            {order.Client},
		order.OnHold:            {order.Manager, order.CSR, order.Client},
		order.Cancelled:         {order.Manager, order.CSR, order.Client},
	}
}

// NotificationSubscriber fans a status change out to every audience of the
// new status. The actor's own role is not notified.
type NotificationSubscriber struct {
	audiences map[order.Status][]order.Role
	notifier  Notifier
}

func NewNotificationSubscriber(audiences map[order.Status][]order.Role, notifier Notifier) *NotificationSubscriber {
	return &NotificationSubscriber{audiences: audiences, notifier: notifier}
}

func (s *NotificationSubscriber) Handle(ctx context.Context, event order.Event) error {
	changed, ok := event.(order.StatusChanged)
	if !ok {
		return nil
	}

	var failures []error
	for _, audience := range s.audiences[changed.ToStatus] {
		if audience == changed.ActorRole {
			continue
		}
		n := Notification{
			Audience:    audience,
			OrderID:     changed.OrderID.String(),
			WorkspaceID: changed.WorkspaceID.String(),
			PONumber:    changed.PONumber,
			Status:      changed.ToStatus,
			Message:     fmt.Sprintf("Order %s moved from %s to %s", changed.PONumber, changed.FromStatus, changed.ToStatus),
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			failures = append(failures, fmt.Errorf("notify %s: %w", audience, err))
		}
	}
	return errors.Join(failures...)
}

// LogNotifier records notifications in the service log. It is the notifier
// used until a real delivery channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"audience", msg.Audience.String(),
		"order_id", msg.OrderID,
		"po_number", msg.PONumber,
		"status", msg.Status.String(),
		"message", msg.Message,
	)
	return nil
}
