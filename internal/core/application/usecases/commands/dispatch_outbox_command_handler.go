package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// DispatchOutboxResult counts what one relay run did.
type DispatchOutboxResult struct {
	Dispatched int
	Failed     int
}

// DispatchOutboxCommandHandler moves committed events from the outbox to the
// event publisher.
//
// Pending rows are locked for the duration of the run, so concurrent relays
// never hand the same message out twice in parallel. A message is marked
// dispatched only after Publish returns; if the process dies in between, the
// message is delivered again on the next run (at least once).
type DispatchOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewDispatchOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) DispatchOutboxCommandHandler {
	return DispatchOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "outbox_relay"),
		now:        time.Now,
	}
}

// Handle publishes one batch. Individual delivery failures are recorded on the
// message and do not fail the run; only storage errors do.
func (h DispatchOutboxCommandHandler) Handle(
	ctx context.Context,
	cmd DispatchOutboxCommand,
) (DispatchOutboxResult, error) {
	var result DispatchOutboxResult

	if err := cmd.Validate(); err != nil {
		return result, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()

	messages, err := outbox.ListPending(ctx, cmd.BatchSize(), cmd.MaxAttempts())
	if err != nil {
		return result, err
	}
	if len(messages) == 0 {
		return result, nil
	}

	for _, msg := range messages {
		if deliverErr := h.deliver(ctx, msg); deliverErr != nil {
			h.logger.WarnContext(ctx, "event delivery failed",
				"message_id", msg.ID.String(),
				"event", msg.EventName,
				"attempt", msg.Attempts+1,
				"error", deliverErr,
			)
			if err = outbox.MarkFailed(ctx, msg.ID, deliverErr); err != nil {
				return result, err
			}
			result.Failed++
			continue
		}

		if err = outbox.MarkDispatched(ctx, msg.ID, h.now().UTC()); err != nil {
			return result, err
		}
		result.Dispatched++
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	h.logger.DebugContext(ctx, "outbox batch dispatched",
		"dispatched", result.Dispatched,
		"failed", result.Failed,
	)
	return result, nil
}

func (h DispatchOutboxCommandHandler) deliver(ctx context.Context, msg ports.OutboxMessage) error {
	event, err := order.UnmarshalEvent(msg.EventName, msg.Payload)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, event)
}
