package order

import (
	"fmt"
)

// Status is the lifecycle state of a purchase order on the shop floor.
//
// Happy path:
//
//	INTAKE ─> DESIGN_PENDING ─> DESIGN_APPROVAL ─> CONFIRMED ─> PRODUCTION_PLANNED
//	  ─> IN_PROGRESS ─> QC ─> PACKING ─> READY_FOR_DELIVERY ─> DELIVERED ─> CLOSED
//
// ON_HOLD and CANCELLED are side branches. Which edges are legal, and for whom,
// is decided by services.OrderWorkflow; Status itself only knows its names.
type Status int

const (
	// Unknown is the zero value and never a valid status.
	Unknown Status = iota
	Intake
	DesignPending
	DesignApproval
	Confirmed
	ProductionPlanned
	InProgress
	QC
	Packing
	ReadyForDelivery
	Delivered
	Closed
	OnHold
	Cancelled
)

var statusNames = map[Status]string{
	Intake:            "INTAKE",
	DesignPending:     "DESIGN_PENDING",
	DesignApproval:    "DESIGN_APPROVAL",
	Confirmed:         "CONFIRMED",
	ProductionPlanned: "PRODUCTION_PLANNED",
	InProgress:        "IN_PROGRESS",
	QC:                "QC",
	Packing:           "PACKING",
	ReadyForDelivery:  "READY_FOR_DELIVERY",
	Delivered:         "DELIVERED",
	Closed:            "CLOSED",
	OnHold:            "ON_HOLD",
	Cancelled:         "CANCELLED",
}

var statusesByName = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, name := range statusNames {
		m[name] = s
	}
	return m
}()

// AllStatuses returns every valid status in declaration order.
func AllStatuses() []Status {
	return []Status{
		Intake, DesignPending, DesignApproval, Confirmed, ProductionPlanned,
		InProgress, QC, Packing, ReadyForDelivery, Delivered, Closed,
		OnHold, Cancelled,
	}
}

// HappyPath returns the canonical sequence from INTAKE to CLOSED.
func HappyPath() []Status {
	return []Status{
		Intake, DesignPending, DesignApproval, Confirmed, ProductionPlanned,
		InProgress, QC, Packing, ReadyForDelivery, Delivered, Closed,
	}
}

// ParseStatus maps a wire name such as "DESIGN_PENDING" to its Status.
//
// Returns an *InvalidStateError for names outside the enumeration, so a
// corrupted database value or a bad request parameter surfaces as INVALID_STATE.
func ParseStatus(name string) (Status, error) {
	if s, ok := statusesByName[name]; ok {
		return s, nil
	}
	return Unknown, NewInvalidStateError(name)
}

// Validate fails with *InvalidStateError for Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return NewInvalidStateError(int(s))
	}
	return nil
}

// String returns the wire name, or "UNKNOWN" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the wire name; invalid values cannot be encoded.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a wire name.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// GoString keeps test failure output readable.
func (s Status) GoString() string {
	return fmt.Sprintf("order.Status(%s)", s.String())
}
