// Package orderrepo persists order aggregates and the per-brand PO number
// sequences with GORM.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the row of the orders table. Status is stored by wire name so
// the table stays readable and survives enum reordering.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index"`
	BrandID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PONumber    string    `gorm:"column:po_number;type:varchar(32);not null;uniqueIndex"`
	Status      string    `gorm:"type:varchar(32);not null;index"`
	Deadline    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	Version     int       `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// POSequenceDTO holds the last PO number issued for a brand.
type POSequenceDTO struct {
	BrandID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue int64     `gorm:"not null"`
}

func (POSequenceDTO) TableName() string {
	return "po_sequences"
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:          o.ID().Bytes(),
		WorkspaceID: o.WorkspaceID().Bytes(),
		BrandID:     o.BrandID().Bytes(),
		PONumber:    o.PONumber(),
		Status:      o.Status().String(),
		Deadline:    o.Deadline(),
		CreatedAt:   o.CreatedAt(),
		Version:     o.Version(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	workspaceID, err := kernel.UUIDFromBytes(dto.WorkspaceID[:])
	if err != nil {
		return nil, err
	}
	brandID, err := kernel.UUIDFromBytes(dto.BrandID[:])
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, workspaceID, brandID, dto.PONumber, status, dto.Deadline, dto.CreatedAt, dto.Version)
}
