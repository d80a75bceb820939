// Package historyrepo persists the append-only status history of orders.
package historyrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// StatusHistoryDTO is one committed transition. (order_id, sequence) is unique,
// which is the last line of defence against two writers appending the same step.
type StatusHistoryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_order_status_history_order_seq,priority:1"`
	Sequence   int       `gorm:"not null;uniqueIndex:ux_order_status_history_order_seq,priority:2"`
	FromStatus string    `gorm:"type:varchar(32);not null"`
	Status     string    `gorm:"type:varchar(32);not null"`
	ActorID    string    `gorm:"type:varchar(128);not null"`
	ActorRole  string    `gorm:"type:varchar(32);not null"`
	Note       string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(e *order.StatusHistoryEntry) StatusHistoryDTO {
	return StatusHistoryDTO{
		ID:         e.ID().Bytes(),
		OrderID:    e.OrderID().Bytes(),
		Sequence:   e.Sequence(),
		FromStatus: e.FromStatus().String(),
		Status:     e.Status().String(),
		ActorID:    e.ActorID(),
		ActorRole:  e.ActorRole().String(),
		Note:       e.Note(),
		CreatedAt:  e.CreatedAt(),
	}
}

func toDomain(dto StatusHistoryDTO) (*order.StatusHistoryEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	from, err := order.ParseStatus(dto.FromStatus)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	role, err := order.ParseRole(dto.ActorRole)
	if err != nil {
		return nil, err
	}

	return order.RestoreStatusHistoryEntry(
		id, orderID, dto.Sequence, from, status, dto.ActorID, role, dto.Note, dto.CreatedAt,
	)
}
