package order

import (
	"errors"
	"fmt"
)

// Transition failure kinds. Callers branch on them with errors.Is; the HTTP
// adapter maps each one to its own status code.
var (
	ErrIllegalTransition      = errors.New("illegal transition")
	ErrUnauthorizedTransition = errors.New("unauthorized transition")
	ErrRedundantTransition    = errors.New("redundant transition")
	ErrTransitionConflict     = errors.New("transition conflict")
	ErrInvalidState           = errors.New("invalid state")
)

// TransitionError describes a rejected edge of the workflow graph.
// Kind is one of ErrIllegalTransition, ErrUnauthorizedTransition or ErrRedundantTransition.
type TransitionError struct {
	Kind error
	From Status
	To   Status
	Role Role
}

func NewIllegalTransitionError(from, to Status) *TransitionError {
	return &TransitionError{Kind: ErrIllegalTransition, From: from, To: to}
}

func NewUnauthorizedTransitionError(from, to Status, role Role) *TransitionError {
	return &TransitionError{Kind: ErrUnauthorizedTransition, From: from, To: to, Role: role}
}

func NewRedundantTransitionError(status Status) *TransitionError {
	return &TransitionError{Kind: ErrRedundantTransition, From: status, To: status}
}

func (e *TransitionError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUnauthorizedTransition):
		return fmt.Sprintf("%s: role %s may not move an order from %s to %s", e.Kind, e.Role, e.From, e.To)
	case errors.Is(e.Kind, ErrRedundantTransition):
		return fmt.Sprintf("%s: order is already %s", e.Kind, e.To)
	default:
		return fmt.Sprintf("%s: %s is not a next step from %s", e.Kind, e.To, e.From)
	}
}

func (e *TransitionError) Unwrap() error {
	return e.Kind
}

// ConflictError reports that another transition committed first; the
// caller's view of the order is stale and should be reloaded.
type ConflictError struct {
	OrderID  string
	Expected string
	Actual   string
}

func NewConflictError(orderID, expected, actual string) *ConflictError {
	return &ConflictError{OrderID: orderID, Expected: expected, Actual: actual}
}

func (e *ConflictError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("%s: order %s changed concurrently (expected %s)", ErrTransitionConflict, e.OrderID, e.Expected)
	}
	return fmt.Sprintf("%s: order %s is %s, expected %s", ErrTransitionConflict, e.OrderID, e.Actual, e.Expected)
}

func (e *ConflictError) Unwrap() error {
	return ErrTransitionConflict
}

// InvalidStateError reports a status outside the enumeration.
type InvalidStateError struct {
	Value any
}

func NewInvalidStateError(value any) *InvalidStateError {
	return &InvalidStateError{Value: value}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %v is not an order status", ErrInvalidState, e.Value)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}
