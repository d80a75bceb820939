package outboxrepo

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotifyChannel is the Postgres channel signalled when new messages commit.
const NotifyChannel = "order_events"

const maxLastErrorLength = 1000

// GormOutboxRepository implements ports.OutboxRepository.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add inserts the events and queues a NOTIFY that Postgres delivers on commit,
// so listeners wake up only for messages they can actually see.
func (r *GormOutboxRepository) Add(ctx context.Context, events ...order.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]OutboxMessageDTO, 0, len(events))
	for _, e := range events {
		dto, err := fromDomain(e)
		if err != nil {
			return err
		}
		dtos = append(dtos, dto)
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(&dtos).Error; err != nil {
		return err
	}

	return db.Exec("SELECT pg_notify(?, ?)", NotifyChannel, events[0].AggregateID().String()).Error
}

// ListPending locks up to limit undelivered rows with FOR UPDATE SKIP LOCKED.
// Must run inside a transaction for the lock to outlive the statement.
func (r *GormOutboxRepository) ListPending(ctx context.Context, limit, maxAttempts int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("dispatched_at IS NULL AND attempts < ?", maxAttempts).
		Order("occurred_at ASC, id ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		msg, convErr := toMessage(dto)
		if convErr != nil {
			return nil, convErr
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (r *GormOutboxRepository) MarkDispatched(ctx context.Context, id kernel.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Update("dispatched_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}

func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if runes := []rune(msg); len(runes) > maxLastErrorLength {
		msg = string(runes[:maxLastErrorLength])
	}

	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}
