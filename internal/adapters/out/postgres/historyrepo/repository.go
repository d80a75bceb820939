package historyrepo

import (
	"context"
	"errors"
	"strconv"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormStatusHistoryRepository implements ports.StatusHistoryRepository.
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// Add appends entry. A duplicate (order, sequence) means a concurrent
// transition already recorded this step and is reported as a conflict.
func (r *GormStatusHistoryRepository) Add(ctx context.Context, entry *order.StatusHistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	err := r.db.WithContext(ctx).Create(&dto).Error

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return order.NewConflictError(
			entry.OrderID().String(),
			"sequence "+strconv.Itoa(entry.Sequence()),
			"already recorded",
		)
	}
	return err
}

// ListByOrder returns an order's history oldest first.
func (r *GormStatusHistoryRepository) ListByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]*order.StatusHistoryEntry, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []StatusHistoryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("sequence ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*order.StatusHistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		entries = append(entries, e)
	}
	return entries, nil
}
