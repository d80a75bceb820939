package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a repository bound to db, which may be a transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order. Reusing an id or PO number is reported as a conflict.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Create(&dto).Error

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return order.NewConflictError(aggregate.ID().String(), "a new order", "already stored ("+pgErr.ConstraintName+")")
	}
	return err
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateStatus writes status and version with a compare-and-swap on the
// stored version. Zero affected rows means another transaction won the race.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, aggregate *order.Order, expectedVersion int) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.Version() != expectedVersion+1 {
		return errs.NewValueIsOutOfRangeError("version", aggregate.Version(), expectedVersion+1, expectedVersion+1)
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", aggregate.ID().Bytes(), expectedVersion).
		Updates(map[string]any{
			"status":  aggregate.Status().String(),
			"version": aggregate.Version(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return order.NewConflictError(
			aggregate.ID().String(),
			fmt.Sprintf("version %d", expectedVersion),
			"modified by a concurrent transition",
		)
	}

	return nil
}

// NextPOSequence upserts the brand's counter and returns the new value.
// The row lock taken by the upsert serializes concurrent intakes per brand.
func (r *GormOrderRepository) NextPOSequence(ctx context.Context, brandID kernel.UUID) (int64, error) {
	if err := brandID.Validate(); err != nil {
		return 0, err
	}

	seq := POSequenceDTO{BrandID: brandID.Bytes(), LastValue: 1}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "brand_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"last_value": gorm.Expr("po_sequences.last_value + 1"),
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "last_value"}}},
		).
		Create(&seq).Error
	if err != nil {
		return 0, err
	}

	return seq.LastValue, nil
}
