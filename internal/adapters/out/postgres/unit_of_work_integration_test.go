package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type transitionUoWFactory struct{ f *postgres_adapter.GormUnitOfWorkFactory }

func (a transitionUoWFactory) Create() commands.TransitionUoW { return a.f.Create() }

type outboxUoWFactory struct{ f *postgres_adapter.GormUnitOfWorkFactory }

func (a outboxUoWFactory) Create() commands.OutboxUoW { return a.f.Create() }

// staleReadFactory holds every transaction right after it loads the order
// until all of them have read, so they all start from the same version.
type staleReadFactory struct {
	f     *postgres_adapter.GormUnitOfWorkFactory
	reads *sync.WaitGroup
}

func (a staleReadFactory) Create() commands.TransitionUoW {
	return staleReadUoW{UnitOfWork: a.f.Create(), reads: a.reads}
}

type staleReadUoW struct {
	ports.UnitOfWork
	reads *sync.WaitGroup
}

func (u staleReadUoW) OrderRepository() ports.OrderRepository {
	return staleReadRepository{OrderRepository: u.UnitOfWork.OrderRepository(), reads: u.reads}
}

type staleReadRepository struct {
	ports.OrderRepository
	reads *sync.WaitGroup
}

func (r staleReadRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	o, err := r.OrderRepository.Get(ctx, id)
	r.reads.Done()
	r.reads.Wait()
	return o, err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e order.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// UnitOfWorkIntegrationTestSuite runs the transaction boundary and the
// transition use case against a real PostgreSQL instance.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	dsn       string
	db        *gorm.DB
	factory   *postgres_adapter.GormUnitOfWorkFactory
	registry  *services.WorkflowRegistry
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.dsn = dsn

	db, err := postgres_adapter.Connect(ctx, dsn)
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
	suite.registry, err = services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), nil)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, po_sequences, order_status_history, outbox_messages").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) addOrder(status order.Status) *order.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	o, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"ACME-"+kernel.NewUUID().String()[:6], status, now.AddDate(0, 1, 0), now, 0,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(context.Background(), o))
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) transitionHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(transitionUoWFactory{suite.factory}, suite.registry)
}

func (suite *UnitOfWorkIntegrationTestSuite) countRows(table string, orderColumn string, id kernel.UUID) int64 {
	var n int64
	suite.Require().NoError(suite.db.Table(table).Where(orderColumn+" = ?", id.Bytes()).Count(&n).Error)
	return n
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsAllRepositories() {
	ctx := context.Background()
	o := suite.addOrder(order.Intake)
	actor, _ := order.NewActor("csr-1", order.CSR)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	loaded, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	entry, err := loaded.ChangeStatus(order.DesignPending, actor, "", time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OrderRepository().UpdateStatus(ctx, loaded, 0))
	suite.Require().NoError(uow.StatusHistoryRepository().Add(ctx, entry))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, loaded.Events()...))

	suite.Require().NoError(uow.Rollback(ctx))

	reloaded, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Intake, reloaded.Status())
	suite.Equal(0, reloaded.Version())
	suite.Zero(suite.countRows("order_status_history", "order_id", o.ID()))
	suite.Zero(suite.countRows("outbox_messages", "aggregate_id", o.ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionOrder_WritesOrderHistoryAndOutbox() {
	ctx := context.Background()
	o := suite.addOrder(order.Intake)
	actor, _ := order.NewActor("csr-1", order.CSR)
	cmd, err := commands.NewTransitionOrderCommand(o.ID(), order.DesignPending, actor, "brief in")
	suite.Require().NoError(err)

	res, err := suite.transitionHandler().Handle(ctx, cmd)

	suite.Require().NoError(err)
	suite.Equal(order.DesignPending, res.Status)
	suite.Equal(10, res.Progress)

	history, err := suite.factory.Create().StatusHistoryRepository().ListByOrder(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal(order.DesignPending, history[0].Status())
	suite.Equal(order.Intake, history[0].FromStatus())
	suite.Equal(1, history[0].Sequence())
	suite.Equal("brief in", history[0].Note())
	suite.Equal(int64(1), suite.countRows("outbox_messages", "aggregate_id", o.ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionOrder_RejectedTransitionWritesNothing() {
	ctx := context.Background()
	o := suite.addOrder(order.QC)

	for _, tc := range []struct {
		target order.Status
		role   order.Role
		want   error
	}{
		{order.QC, order.Admin, order.ErrRedundantTransition},
		{order.Closed, order.Admin, order.ErrIllegalTransition},
		{order.Packing, order.Client, order.ErrUnauthorizedTransition},
	} {
		actor, _ := order.NewActor("u", tc.role)
		cmd, err := commands.NewTransitionOrderCommand(o.ID(), tc.target, actor, "")
		suite.Require().NoError(err)

		_, err = suite.transitionHandler().Handle(ctx, cmd)
		suite.Require().ErrorIs(err, tc.want)
	}

	reloaded, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.QC, reloaded.Status())
	suite.Zero(suite.countRows("order_status_history", "order_id", o.ID()))
	suite.Zero(suite.countRows("outbox_messages", "aggregate_id", o.ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionOrder_MissingOrderIsNotFound() {
	actor, _ := order.NewActor("u", order.Admin)
	cmd, _ := commands.NewTransitionOrderCommand(kernel.NewUUID(), order.DesignPending, actor, "")

	_, err := suite.transitionHandler().Handle(context.Background(), cmd)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// Two managers act on the same INTAKE order at the same time with different
// targets. Exactly one must win; history and status must agree afterwards.
func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionOrder_ConcurrentRaceHasOneWinner() {
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		o := suite.addOrder(order.Intake)
		targets := []order.Status{order.DesignPending, order.OnHold}

		var wg sync.WaitGroup
		start := make(chan struct{})
		results := make([]error, len(targets))
		for i, target := range targets {
			wg.Add(1)
			go func() {
				defer wg.Done()
				actor, _ := order.NewActor("manager", order.Manager)
				cmd, _ := commands.NewTransitionOrderCommand(o.ID(), target, actor, "")
				<-start
				_, results[i] = suite.transitionHandler().Handle(ctx, cmd.WithExpectedStatus(order.Intake))
			}()
		}
		close(start)
		wg.Wait()

		var wins, conflicts int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case suite.ErrorIs(err, order.ErrTransitionConflict):
				conflicts++
			}
		}
		suite.Equal(1, wins, "round %d", round)
		suite.Equal(1, conflicts, "round %d", round)

		history, err := suite.factory.Create().StatusHistoryRepository().ListByOrder(ctx, o.ID())
		suite.Require().NoError(err)
		suite.Require().Len(history, 1)

		reloaded, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
		suite.Require().NoError(err)
		suite.Equal(history[0].Status(), reloaded.Status(), "latest history entry matches the order")
		suite.Equal(1, reloaded.Version())
	}
}

// Both transactions read INTAKE at version 0 before either writes and neither
// sends an expected status, so only the version check separates them.
func (suite *UnitOfWorkIntegrationTestSuite) TestTransitionOrder_StaleReadLosesOnVersion() {
	ctx := context.Background()

	for round := 0; round < 5; round++ {
		o := suite.addOrder(order.Intake)
		targets := []order.Status{order.DesignPending, order.OnHold}

		var reads sync.WaitGroup
		reads.Add(len(targets))
		handler := commands.NewTransitionOrderCommandHandler(
			staleReadFactory{f: suite.factory, reads: &reads}, suite.registry)

		var wg sync.WaitGroup
		results := make([]error, len(targets))
		for i, target := range targets {
			wg.Add(1)
			go func() {
				defer wg.Done()
				actor, _ := order.NewActor("manager", order.Manager)
				cmd, _ := commands.NewTransitionOrderCommand(o.ID(), target, actor, "")
				_, results[i] = handler.Handle(ctx, cmd)
			}()
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case suite.ErrorIs(err, order.ErrTransitionConflict):
				conflicts++
			}
		}
		suite.Equal(1, wins, "round %d", round)
		suite.Equal(1, conflicts, "round %d", round)

		reloaded, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
		suite.Require().NoError(err)
		suite.Equal(1, reloaded.Version())
		suite.Equal(int64(1), suite.countRows("order_status_history", "order_id", o.ID()))
		suite.Equal(int64(1), suite.countRows("outbox_messages", "aggregate_id", o.ID()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDispatchOutbox_DeliversOnce() {
	ctx := context.Background()
	o := suite.addOrder(order.Intake)
	actor, _ := order.NewActor("csr", order.CSR)
	cmd, _ := commands.NewTransitionOrderCommand(o.ID(), order.OnHold, actor, "waiting on fabric")
	_, err := suite.transitionHandler().Handle(ctx, cmd)
	suite.Require().NoError(err)

	publisher := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := commands.NewDispatchOutboxCommandHandler(outboxUoWFactory{suite.factory}, publisher, logger)
	dispatch, _ := commands.NewDispatchOutboxCommand(10, 3)

	res, err := handler.Handle(ctx, dispatch)
	suite.Require().NoError(err)
	suite.Equal(1, res.Dispatched)

	res, err = handler.Handle(ctx, dispatch)
	suite.Require().NoError(err)
	suite.Zero(res.Dispatched)

	suite.Require().Len(publisher.events, 1)
	changed, ok := publisher.events[0].(order.StatusChanged)
	suite.Require().True(ok)
	suite.Equal(o.ID(), changed.OrderID)
	suite.Equal(order.OnHold, changed.ToStatus)
	suite.Equal("waiting on fabric", changed.Note)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutboxListener_WakesOnCommit() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener, err := postgres_adapter.NewOutboxListener(suite.dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	suite.Require().NoError(err)
	defer func() { _ = listener.Close() }()
	go listener.Run(ctx)

	o := suite.addOrder(order.Intake)
	actor, _ := order.NewActor("csr", order.CSR)
	cmd, _ := commands.NewTransitionOrderCommand(o.ID(), order.DesignPending, actor, "")
	_, err = suite.transitionHandler().Handle(ctx, cmd)
	suite.Require().NoError(err)

	select {
	case <-listener.Wake():
	case <-time.After(10 * time.Second):
		suite.Fail("no wake-up after commit")
	}
}

var _ ports.UnitOfWorkFactory = (*postgres_adapter.GormUnitOfWorkFactory)(nil)

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
