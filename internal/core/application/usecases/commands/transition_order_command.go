package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks to move an order to a new status on behalf of an actor.
//
// ExpectedStatus is optional. When set, the transition only proceeds if the
// order is still in that status; clients pass the status they were shown so a
// change made in the meantime surfaces as CONFLICT instead of being silently
// applied on top.
//
// Example:
//
//	actor, _ := order.NewActor("u-17", order.Designer)
//	cmd, err := NewTransitionOrderCommand(orderID, order.DesignApproval, actor, "proofs sent")
//	cmd = cmd.WithExpectedStatus(order.DesignPending)
type TransitionOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	target         order.Status
	actor          order.Actor
	note           string
	expectedStatus order.Status

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand validates the order id, the target status and the
// actor. The note is trimmed and limited to order.MaxNoteLength characters.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	actor order.Actor,
	note string,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
		cmd.setNote(note),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// WithExpectedStatus returns a copy that requires the order to be in s.
func (c TransitionOrderCommand) WithExpectedStatus(s order.Status) TransitionOrderCommand {
	c.expectedStatus = s
	return c
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderCommand) Target() order.Status { return c.target }
func (c TransitionOrderCommand) Actor() order.Actor   { return c.actor }
func (c TransitionOrderCommand) Note() string         { return c.note }

// ExpectedStatus reports the required current status, if any.
func (c TransitionOrderCommand) ExpectedStatus() (order.Status, bool) {
	return c.expectedStatus, c.expectedStatus != order.Unknown
}

func (c *TransitionOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *TransitionOrderCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *TransitionOrderCommand) setActor(actor order.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *TransitionOrderCommand) setNote(note string) error {
	note = strings.TrimSpace(note)
	if n := len([]rune(note)); n > order.MaxNoteLength {
		return errs.NewValueIsOutOfRangeError("note length", n, 0, order.MaxNoteLength)
	}
	c.note = note
	return nil
}
