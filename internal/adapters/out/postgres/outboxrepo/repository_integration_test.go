package outboxrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/outboxrepo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type OutboxRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&outboxrepo.OutboxMessageDTO{}))
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE outbox_messages").Error)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func newEvent(at time.Time) order.StatusChanged {
	return order.StatusChanged{
		ID:          kernel.NewUUID(),
		OrderID:     kernel.NewUUID(),
		WorkspaceID: kernel.NewUUID(),
		PONumber:    "ACME-000010",
		FromStatus:  order.Packing,
		ToStatus:    order.ReadyForDelivery,
		ActorID:     "packer-2",
		ActorRole:   order.Packer,
		Timestamp:   at,
	}
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestAddAndListPending_OldestFirst() {
	ctx := context.Background()
	repo := outboxrepo.NewGormOutboxRepository(suite.db)
	base := time.Now().UTC().Truncate(time.Microsecond)
	later, earlier := newEvent(base.Add(time.Minute)), newEvent(base)

	suite.Require().NoError(repo.Add(ctx, later, earlier))

	msgs, err := repo.ListPending(ctx, 10, 3)
	suite.Require().NoError(err)
	suite.Require().Len(msgs, 2)
	suite.Equal(earlier.ID, msgs[0].ID)
	suite.Equal(later.ID, msgs[1].ID)
	suite.Equal(order.StatusChangedEventName, msgs[0].EventName)

	decoded, err := order.UnmarshalEvent(msgs[0].EventName, msgs[0].Payload)
	suite.Require().NoError(err)
	suite.Equal(earlier.OrderID, decoded.AggregateID())
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestMarkDispatchedAndFailed() {
	ctx := context.Background()
	repo := outboxrepo.NewGormOutboxRepository(suite.db)
	delivered, flaky := newEvent(time.Now().UTC()), newEvent(time.Now().UTC())
	suite.Require().NoError(repo.Add(ctx, delivered, flaky))

	suite.Require().NoError(repo.MarkDispatched(ctx, delivered.ID, time.Now().UTC()))
	suite.Require().NoError(repo.MarkFailed(ctx, flaky.ID, errors.New(strings.Repeat("e", 5000))))

	msgs, err := repo.ListPending(ctx, 10, 3)
	suite.Require().NoError(err)
	suite.Require().Len(msgs, 1)
	suite.Equal(flaky.ID, msgs[0].ID)
	suite.Equal(1, msgs[0].Attempts)
	suite.Len(msgs[0].LastError, 1000)

	suite.Require().NoError(repo.MarkFailed(ctx, flaky.ID, errors.New("again")))
	msgs, err = repo.ListPending(ctx, 10, 2)
	suite.Require().NoError(err)
	suite.Empty(msgs, "messages that exhausted their attempts are parked")

	suite.Require().ErrorIs(repo.MarkDispatched(ctx, kernel.NewUUID(), time.Now()), errs.ErrObjectNotFound)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestListPending_SkipsRowsLockedByAnotherRelay() {
	ctx := context.Background()
	suite.Require().NoError(outboxrepo.NewGormOutboxRepository(suite.db).Add(ctx, newEvent(time.Now().UTC()), newEvent(time.Now().UTC())))

	first := suite.db.Begin()
	defer first.Rollback()
	second := suite.db.Begin()
	defer second.Rollback()

	a, err := outboxrepo.NewGormOutboxRepository(first).ListPending(ctx, 1, 3)
	suite.Require().NoError(err)
	b, err := outboxrepo.NewGormOutboxRepository(second).ListPending(ctx, 10, 3)
	suite.Require().NoError(err)

	suite.Require().Len(a, 1)
	suite.Require().Len(b, 1)
	suite.NotEqual(a[0].ID, b[0].ID)
}

func TestOutboxRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxRepositoryIntegrationTestSuite))
}
