package order

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// MaxNoteLength bounds the free-text note attached to a transition.
const MaxNoteLength = 2000

var ErrStatusHistoryEntryIsNotConstructed = errors.New(
	"StatusHistoryEntry must be created via Order.ChangeStatus or RestoreStatusHistoryEntry",
)

// StatusHistoryEntry is one row of the append-only audit ledger. Entries are
// produced by Order.ChangeStatus and never modified afterwards.
//
// Sequence equals the order version after the transition, so entries of one
// order are totally ordered even when timestamps collide, and the entry with
// the highest sequence always carries the order's current status.
type StatusHistoryEntry struct {
	id         kernel.UUID
	orderID    kernel.UUID
	sequence   int
	fromStatus Status
	status     Status
	actorID    string
	actorRole  Role
	note       string
	createdAt  time.Time

	guard guard.ConstructorGuard
}

// RestoreStatusHistoryEntry rehydrates an entry read from storage.
func RestoreStatusHistoryEntry(
	id, orderID kernel.UUID,
	sequence int,
	fromStatus, status Status,
	actorID string,
	actorRole Role,
	note string,
	createdAt time.Time,
) (*StatusHistoryEntry, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		fromStatus.Validate(),
		status.Validate(),
		actorRole.Validate(),
	); err != nil {
		return nil, err
	}
	if sequence <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("sequence", sequence, 1, "unbounded")
	}
	if actorID == "" {
		return nil, errs.NewValueIsRequiredError("actor id")
	}

	return &StatusHistoryEntry{
		id:         id,
		orderID:    orderID,
		sequence:   sequence,
		fromStatus: fromStatus,
		status:     status,
		actorID:    actorID,
		actorRole:  actorRole,
		note:       note,
		createdAt:  createdAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (e *StatusHistoryEntry) Validate() error {
	if e == nil {
		return ErrStatusHistoryEntryIsNotConstructed
	}
	return e.guard.Validate(ErrStatusHistoryEntryIsNotConstructed)
}

func (e *StatusHistoryEntry) ID() kernel.UUID      { return e.id }
func (e *StatusHistoryEntry) OrderID() kernel.UUID { return e.orderID }
func (e *StatusHistoryEntry) Sequence() int        { return e.sequence }
func (e *StatusHistoryEntry) FromStatus() Status   { return e.fromStatus }
func (e *StatusHistoryEntry) Status() Status       { return e.status }
func (e *StatusHistoryEntry) ActorID() string      { return e.actorID }
func (e *StatusHistoryEntry) ActorRole() Role      { return e.actorRole }
func (e *StatusHistoryEntry) Note() string         { return e.note }
func (e *StatusHistoryEntry) CreatedAt() time.Time { return e.createdAt }
