// Package observability decorates command handlers with spans, structured
// logs and counters.
package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "orderflow/internal/adapters/observability"

type TransitionOrderHandler interface {
	Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionOrderResult, error)
}

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
}

type DispatchOutboxHandler interface {
	Handle(ctx context.Context, cmd commands.DispatchOutboxCommand) (commands.DispatchOutboxResult, error)
}

type Option func(*instrumentation)

func WithLogger(logger *slog.Logger) Option {
	return func(i *instrumentation) {
		i.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(i *instrumentation) {
		i.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(i *instrumentation) {
		i.metrics = newMetrics(m)
	}
}

type instrumentation struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics metrics
}

func newInstrumentation(opts []Option) instrumentation {
	i := instrumentation{}
	for _, opt := range opts {
		if opt != nil {
			opt(&i)
		}
	}
	if i.tracer == nil {
		i.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return i
}

// TransitionOrder wraps the transition use case. Rejections are logged at
// info level because they are ordinary business outcomes; only unexpected
// failures mark the span as an error.
type TransitionOrder struct {
	inner TransitionOrderHandler
	instrumentation
}

func NewTransitionOrder(inner TransitionOrderHandler, opts ...Option) *TransitionOrder {
	return &TransitionOrder{inner: inner, instrumentation: newInstrumentation(opts)}
}

func (d *TransitionOrder) Handle(
	ctx context.Context,
	cmd commands.TransitionOrderCommand,
) (commands.TransitionOrderResult, error) {
	attrs := []attribute.KeyValue{
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("order.target_status", cmd.Target().String()),
		attribute.String("actor.role", cmd.Actor().Role().String()),
	}
	ctx, span := d.tracer.Start(ctx, "TransitionOrder", trace.WithAttributes(attrs...))
	defer span.End()

	res, err := d.inner.Handle(ctx, cmd)
	if err != nil {
		outcome := transitionOutcome(err)
		d.metrics.recordTransition(ctx, cmd.Target(), outcome)
		span.SetAttributes(attribute.String("transition.outcome", outcome))
		logAttrs := []slog.Attr{
			slog.String("order_id", cmd.OrderID().String()),
			slog.String("target", cmd.Target().String()),
			slog.String("role", cmd.Actor().Role().String()),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		}
		if outcome == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.LogAttrs(ctx, slog.LevelError, "transition failed", logAttrs...)
		} else {
			d.logger.LogAttrs(ctx, slog.LevelInfo, "transition rejected", logAttrs...)
		}
		return res, err
	}

	d.metrics.recordTransition(ctx, res.Status, "committed")
	span.SetAttributes(attribute.Int("order.progress", res.Progress), attribute.Int("order.version", res.Version))
	d.logger.LogAttrs(ctx, slog.LevelInfo, "order transitioned",
		slog.String("order_id", cmd.OrderID().String()),
		slog.String("status", res.Status.String()),
		slog.Int("progress", res.Progress),
		slog.String("actor_id", cmd.Actor().ID()),
	)
	return res, nil
}

func transitionOutcome(err error) string {
	switch {
	case errors.Is(err, order.ErrTransitionConflict):
		return "conflict"
	case errors.Is(err, order.ErrUnauthorizedTransition):
		return "unauthorized"
	case errors.Is(err, order.ErrIllegalTransition):
		return "illegal"
	case errors.Is(err, order.ErrRedundantTransition):
		return "redundant"
	case errors.Is(err, order.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// CreateOrder wraps order intake.
type CreateOrder struct {
	inner CreateOrderHandler
	instrumentation
}

func NewCreateOrder(inner CreateOrderHandler, opts ...Option) *CreateOrder {
	return &CreateOrder{inner: inner, instrumentation: newInstrumentation(opts)}
}

func (d *CreateOrder) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error) {
	ctx, span := d.tracer.Start(ctx, "CreateOrder", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("brand.code", cmd.BrandCode()),
	))
	defer span.End()

	res, err := d.inner.Handle(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.LogAttrs(ctx, slog.LevelError, "order intake failed",
			slog.String("order_id", cmd.OrderID().String()), slog.String("error", err.Error()))
		return res, err
	}

	d.metrics.recordCreated(ctx, cmd.BrandCode())
	span.SetAttributes(attribute.String("order.po_number", res.PONumber))
	d.logger.LogAttrs(ctx, slog.LevelInfo, "order created",
		slog.String("order_id", res.OrderID.String()), slog.String("po_number", res.PONumber))
	return res, nil
}

// DispatchOutbox wraps a relay run.
type DispatchOutbox struct {
	inner DispatchOutboxHandler
	instrumentation
}

func NewDispatchOutbox(inner DispatchOutboxHandler, opts ...Option) *DispatchOutbox {
	return &DispatchOutbox{inner: inner, instrumentation: newInstrumentation(opts)}
}

func (d *DispatchOutbox) Handle(
	ctx context.Context,
	cmd commands.DispatchOutboxCommand,
) (commands.DispatchOutboxResult, error) {
	ctx, span := d.tracer.Start(ctx, "DispatchOutbox", trace.WithAttributes(
		attribute.Int("outbox.batch_size", cmd.BatchSize()),
	))
	defer span.End()

	res, err := d.inner.Handle(ctx, cmd)
	d.metrics.recordDispatch(ctx, res)
	span.SetAttributes(attribute.Int("outbox.dispatched", res.Dispatched), attribute.Int("outbox.failed", res.Failed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	return res, nil
}
