package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is a client purchase order moving through design, production and
// delivery. It is the aggregate root the workflow engine operates on.
//
// Order follows these invariants:
//   - Identity, workspace and brand are valid UUIDs fixed at creation
//   - PO number, deadline and creation time are set once and never change
//   - Status is always a member of the Status enumeration
//   - Status only changes through ChangeStatus, which bumps the version and
//     emits exactly one history entry and one StatusChanged event
//
// Whether a given change is allowed for a given role is not the aggregate's
// concern; services.OrderWorkflow decides that before ChangeStatus is called.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// workspaceID is the tenant the order belongs to
	workspaceID kernel.UUID

	// brandID scopes the PO number sequence
	brandID kernel.UUID

	// poNumber is the human-readable reference, sequential per brand
	poNumber string

	// status is the current lifecycle state
	status Status

	// deadline is the client's requested delivery date
	deadline time.Time

	// createdAt is when the order was taken in
	createdAt time.Time

	// version counts committed transitions and backs optimistic concurrency
	version int

	// events are facts recorded since the aggregate was loaded
	events []Event

	// isConstructed ensures the order was created via NewOrder
	isConstructed bool
}

// NewOrder takes in a new order at INTAKE with version 0.
//
// Parameters:
//   - id, workspaceID, brandID: valid UUIDs
//   - poNumber: non-blank reference allocated by the caller
//   - deadline: requested delivery date (required)
//   - createdAt: intake timestamp (required)
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), workspaceID, brandID, "ACME-000042", deadline, time.Now())
//	if err != nil {
//	    return err
//	}
func NewOrder(
	id, workspaceID, brandID kernel.UUID,
	poNumber string,
	deadline, createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Intake,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setWorkspaceID(workspaceID),
		o.setBrandID(brandID),
		o.setPONumber(poNumber),
		o.setDeadline(deadline),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rehydrates an order from storage with its persisted status and version.
func RestoreOrder(
	id, workspaceID, brandID kernel.UUID,
	poNumber string,
	status Status,
	deadline, createdAt time.Time,
	version int,
) (*Order, error) {
	o, err := NewOrder(id, workspaceID, brandID, poNumber, deadline, createdAt)
	if err != nil {
		return nil, err
	}
	if err = status.Validate(); err != nil {
		return nil, err
	}
	if version < 0 {
		return nil, errs.NewValueIsOutOfRangeError("version", version, 0, "unbounded")
	}

	o.status = status
	o.version = version
	return o, nil
}

// Validate ensures the Order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID          { return o.id }
func (o *Order) WorkspaceID() kernel.UUID { return o.workspaceID }
func (o *Order) BrandID() kernel.UUID     { return o.brandID }
func (o *Order) PONumber() string         { return o.poNumber }
func (o *Order) Status() Status           { return o.status }
func (o *Order) Deadline() time.Time      { return o.deadline }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }

// Version is the number of transitions committed so far.
func (o *Order) Version() int {
	return o.version
}

// Events returns the events recorded since the order was loaded.
func (o *Order) Events() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}

// ClearEvents drops recorded events once they are handed to the outbox.
func (o *Order) ClearEvents() {
	o.events = nil
}

// ChangeStatus moves the order to target on behalf of actor.
//
// This method enforces the following rules:
//   - target must be a valid status (INVALID_STATE otherwise)
//   - target must differ from the current status (REDUNDANT_TRANSITION otherwise)
//   - note is at most MaxNoteLength characters
//
// On success the version is incremented, a StatusChanged event is recorded and
// the history entry for this transition is returned. The entry must be
// persisted in the same transaction as the status update.
//
// Example:
//
//	if err := workflow.Authorize(o.Status(), order.DesignPending, actor.Role()); err != nil {
//	    return err
//	}
//	entry, err := o.ChangeStatus(order.DesignPending, actor, "artwork received", time.Now())
func (o *Order) ChangeStatus(target Status, actor Actor, note string, at time.Time) (*StatusHistoryEntry, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if target == o.status {
		return nil, NewRedundantTransitionError(o.status)
	}
	note = strings.TrimSpace(note)
	if n := len([]rune(note)); n > MaxNoteLength {
		return nil, errs.NewValueIsOutOfRangeError("note length", n, 0, MaxNoteLength)
	}
	if at.IsZero() {
		return nil, errs.NewValueIsRequiredError("transition time")
	}

	from := o.status
	entry, err := RestoreStatusHistoryEntry(
		kernel.NewUUID(), o.id, o.version+1, from, target, actor.ID(), actor.Role(), note, at,
	)
	if err != nil {
		return nil, err
	}

	o.status = target
	o.version++
	o.events = append(o.events, StatusChanged{
		ID:          kernel.NewUUID(),
		OrderID:     o.id,
		WorkspaceID: o.workspaceID,
		PONumber:    o.poNumber,
		FromStatus:  from,
		ToStatus:    target,
		ActorID:     actor.ID(),
		ActorRole:   actor.Role(),
		Note:        note,
		Timestamp:   at,
	})

	return entry, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setWorkspaceID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("workspace id", err)
	}
	o.workspaceID = id
	return nil
}

func (o *Order) setBrandID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("brand id", err)
	}
	o.brandID = id
	return nil
}

func (o *Order) setPONumber(poNumber string) error {
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return errs.NewValueIsRequiredError("po number")
	}
	o.poNumber = poNumber
	return nil
}

func (o *Order) setDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return errs.NewValueIsRequiredError("deadline")
	}
	o.deadline = deadline
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	if !o.deadline.IsZero() && deadlineBeforeIntake(o.deadline, createdAt) {
		return errs.NewValueIsInvalidErrorWithCause("deadline",
			fmt.Errorf("%s is before intake on %s", o.deadline.Format(time.DateOnly), createdAt.Format(time.DateOnly)))
	}
	o.createdAt = createdAt
	return nil
}

// deadlineBeforeIntake compares calendar days in the deadline's own location,
// so a deadline of local midnight today is still accepted.
func deadlineBeforeIntake(deadline, createdAt time.Time) bool {
	dy, dm, dd := deadline.Date()
	cy, cm, cd := createdAt.In(deadline.Location()).Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC))
}
