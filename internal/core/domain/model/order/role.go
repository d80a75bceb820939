package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// Role is the closed set of principals that may act on an order.
type Role int

const (
	UnknownRole Role = iota
	Admin
	Manager
	CSR
	Designer
	Planner
	Operator
	QCInspector
	Packer
	Dispatcher
	Client
)

var roleNames = map[Role]string{
	Admin:       "ADMIN",
	Manager:     "MANAGER",
	CSR:         "CSR",
	Designer:    "DESIGNER",
	Planner:     "PLANNER",
	Operator:    "OPERATOR",
	QCInspector: "QC_INSPECTOR",
	Packer:      "PACKER",
	Dispatcher:  "DISPATCHER",
	Client:      "CLIENT",
}

var rolesByName = func() map[string]Role {
	m := make(map[string]Role, len(roleNames))
	for r, name := range roleNames {
		m[name] = r
	}
	return m
}()

// AllRoles returns every valid role in declaration order.
func AllRoles() []Role {
	return []Role{Admin, Manager, CSR, Designer, Planner, Operator, QCInspector, Packer, Dispatcher, Client}
}

// ParseRole maps a name such as "QC_INSPECTOR" to its Role. Matching ignores case
// and surrounding whitespace because roles arrive from session headers.
func ParseRole(name string) (Role, error) {
	if r, ok := rolesByName[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return r, nil
	}
	return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", name))
}

// Validate fails for UnknownRole and out-of-range values.
func (r Role) Validate() error {
	if _, ok := roleNames[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// IsEscalated reports whether the role may perform every legal transition.
func (r Role) IsEscalated() bool {
	return r == Admin || r == Manager
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the role name.
func (r Role) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(data []byte) error {
	parsed, err := ParseRole(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the principal requesting a transition. Authentication happens
// upstream; the role is trusted as supplied.
type Actor struct {
	id    string
	role  Role
	guard guard.ConstructorGuard
}

// NewActor validates that id is non-blank and role is a member of the enumeration.
func NewActor(id string, role Role) (Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Actor{}, errs.NewValueIsRequiredError("actor id")
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() string {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}
