package observability

import (
	"context"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	transitions      metric.Int64Counter
	ordersCreated    metric.Int64Counter
	eventsDispatched metric.Int64Counter
	eventsFailed     metric.Int64Counter
}

func newMetrics(m metric.Meter) metrics {
	if m == nil {
		return metrics{}
	}
	transitions, _ := m.Int64Counter("orderflow.transitions",
		metric.WithDescription("Transition attempts by target status and outcome"))
	ordersCreated, _ := m.Int64Counter("orderflow.orders.created",
		metric.WithDescription("Orders taken in"))
	eventsDispatched, _ := m.Int64Counter("orderflow.outbox.dispatched",
		metric.WithDescription("Outbox messages delivered"))
	eventsFailed, _ := m.Int64Counter("orderflow.outbox.failed",
		metric.WithDescription("Outbox delivery failures"))
	return metrics{
		transitions:      transitions,
		ordersCreated:    ordersCreated,
		eventsDispatched: eventsDispatched,
		eventsFailed:     eventsFailed,
	}
}

func (m metrics) recordTransition(ctx context.Context, status order.Status, outcome string) {
	addCounter(ctx, m.transitions, 1,
		attribute.String("order.status", status.String()),
		attribute.String("outcome", outcome))
}

func (m metrics) recordCreated(ctx context.Context, brandCode string) {
	addCounter(ctx, m.ordersCreated, 1, attribute.String("brand.code", brandCode))
}

func (m metrics) recordDispatch(ctx context.Context, res commands.DispatchOutboxResult) {
	addCounter(ctx, m.eventsDispatched, int64(res.Dispatched))
	addCounter(ctx, m.eventsFailed, int64(res.Failed))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
