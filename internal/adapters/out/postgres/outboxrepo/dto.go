// Package outboxrepo stores domain events next to the state change that
// produced them and hands them to the relay.
package outboxrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
)

// OutboxMessageDTO is one pending or delivered event.
type OutboxMessageDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AggregateID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	EventName    string     `gorm:"type:varchar(128);not null"`
	Payload      []byte     `gorm:"type:jsonb;not null"`
	OccurredAt   time.Time  `gorm:"not null;index"`
	DispatchedAt *time.Time `gorm:"index"`
	Attempts     int        `gorm:"not null;default:0"`
	LastError    string     `gorm:"type:text"`
}

func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(e order.Event) (OutboxMessageDTO, error) {
	payload, err := order.MarshalEvent(e)
	if err != nil {
		return OutboxMessageDTO{}, err
	}
	return OutboxMessageDTO{
		ID:          e.EventID().Bytes(),
		AggregateID: e.AggregateID().Bytes(),
		EventName:   e.EventName(),
		Payload:     payload,
		OccurredAt:  e.OccurredAt(),
	}, nil
}

func toMessage(dto OutboxMessageDTO) (ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	aggregateID, err := kernel.UUIDFromBytes(dto.AggregateID[:])
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		ID:          id,
		AggregateID: aggregateID,
		EventName:   dto.EventName,
		Payload:     dto.Payload,
		OccurredAt:  dto.OccurredAt,
		Attempts:    dto.Attempts,
		LastError:   dto.LastError,
	}, nil
}
