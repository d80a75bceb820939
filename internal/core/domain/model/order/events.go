package order

import (
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// StatusChangedEventName is the outbox type of StatusChanged.
const StatusChangedEventName = "order.status_changed"

// Event is a fact about an order that other parts of the system react to.
type Event interface {
	EventID() kernel.UUID
	EventName() string
	AggregateID() kernel.UUID
	OccurredAt() time.Time
}

// StatusChanged is recorded for every committed transition and delivered to
// notification and audit subscribers through the outbox.
type StatusChanged struct {
	ID          kernel.UUID `json:"event_id"`
	OrderID     kernel.UUID `json:"order_id"`
	WorkspaceID kernel.UUID `json:"workspace_id"`
	PONumber    string      `json:"po_number"`
	FromStatus  Status      `json:"from_status"`
	ToStatus    Status      `json:"to_status"`
	ActorID     string      `json:"actor_id"`
	ActorRole   Role        `json:"actor_role"`
	Note        string      `json:"note,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (e StatusChanged) EventID() kernel.UUID     { return e.ID }
func (e StatusChanged) EventName() string        { return StatusChangedEventName }
func (e StatusChanged) AggregateID() kernel.UUID { return e.OrderID }
func (e StatusChanged) OccurredAt() time.Time    { return e.Timestamp }

// MarshalEvent encodes an event for the outbox payload column.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes an outbox payload written by MarshalEvent.
func UnmarshalEvent(name string, payload []byte) (Event, error) {
	switch name {
	case StatusChangedEventName:
		var e StatusChanged
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", name)
	}
}
