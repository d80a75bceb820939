package cmd

import (
	"log/slog"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/observability"
	"orderflow/internal/adapters/out/eventbus"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	platform "orderflow/internal/platform/observability"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	workflows   *services.WorkflowRegistry
	instruments *platform.Instruments
	logger      *slog.Logger
	bus         *eventbus.Bus
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	workflows *services.WorkflowRegistry,
	instruments *platform.Instruments,
) CompositionRoot {
	logger := instruments.Logger
	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		workflows:   workflows,
		instruments: instruments,
		logger:      logger,
		bus:         newEventBus(logger),
	}
}

func newEventBus(logger *slog.Logger) *eventbus.Bus {
	bus := eventbus.New(eventbus.WithLogger(logger))
	audit := eventbus.NewAuditSubscriber(logger)
	notifications := eventbus.NewNotificationSubscriber(eventbus.DefaultAudiences(), eventbus.NewLogNotifier(logger))
	bus.Subscribe(order.StatusChangedEventName, "audit", audit.Handle)
	bus.Subscribe(order.StatusChangedEventName, "notifications", notifications.Handle)
	return bus
}

func (c *CompositionRoot) decoratorOptions() []observability.Option {
	return []observability.Option{
		observability.WithLogger(c.logger),
		observability.WithTracer(c.instruments.Tracer("orderflow/commands")),
		observability.WithMeter(c.instruments.Meter("orderflow/commands")),
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() httpin.CreateOrderHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return observability.NewCreateOrder(commands.NewCreateOrderCommandHandler(f), c.decoratorOptions()...)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() httpin.TransitionOrderHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.Create()
	})
	return observability.NewTransitionOrder(
		commands.NewTransitionOrderCommandHandler(f, c.workflows),
		c.decoratorOptions()...,
	)
}

func (c *CompositionRoot) CreateDispatchOutboxCommandHandler() *observability.DispatchOutbox {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return observability.NewDispatchOutbox(
		commands.NewDispatchOutboxCommandHandler(f, c.bus, c.logger),
		c.decoratorOptions()...,
	)
}

func (c *CompositionRoot) CreateGetAvailableTransitionsQueryHandler() queries.GetAvailableTransitionsQueryHandler {
	return queries.NewGetAvailableTransitionsQueryHandler(c.gormDB, c.workflows)
}

func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	return queries.NewGetOrderTrackingQueryHandler(c.gormDB, c.workflows)
}

func (c *CompositionRoot) CreateGetStatusProgressQueryHandler() queries.GetStatusProgressQueryHandler {
	return queries.NewGetStatusProgressQueryHandler(c.workflows)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateGetAvailableTransitionsQueryHandler(),
		c.CreateGetOrderTrackingQueryHandler(),
		c.CreateGetStatusProgressQueryHandler(),
	)
}

func (c *CompositionRoot) CreateRelayCommand() (commands.DispatchOutboxCommand, error) {
	return commands.NewDispatchOutboxCommand(c.config.RelayBatchSize, c.config.RelayMaxAttempts)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncTransitionUoWFactory func() commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create() commands.TransitionUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
