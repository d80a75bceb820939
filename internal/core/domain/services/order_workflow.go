package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrOrderWorkflowIsNotConstructed = errors.New("OrderWorkflow must be created via NewOrderWorkflow constructor")

// TransitionOption is one next step offered to an actor.
type TransitionOption struct {
	Status      order.Status
	Label       string
	Description string
}

// Edge is one arc of the workflow graph with the roles allowed to take it.
type Edge struct {
	From  order.Status
	To    order.Status
	Roles []order.Role
	Label string
}

// OrderWorkflow decides which status changes are legal and who may make them,
// and maps every status to its progress percentage.
//
// It is built once from a WorkflowDefinition, keeps private copies of every
// table and exposes no mutators, so a single instance is shared by all
// requests (and by all workspaces that do not override it).
//
// Example:
//
//	wf := services.DefaultOrderWorkflow()
//	if err := wf.Authorize(order.Intake, order.DesignPending, order.Designer); err != nil {
//	    // errors.Is(err, order.ErrUnauthorizedTransition) ...
//	}
type OrderWorkflow struct {
	transitions map[order.Status][]order.Status
	permissions map[order.Status]map[order.Role]struct{}
	progress    map[order.Status]int
	labels      map[order.Status]StatusLabel

	guard guard.ConstructorGuard
}

// NewOrderWorkflow validates def and builds an immutable workflow.
//
// Rules checked:
//   - every status, target and role is a member of its enumeration
//   - no status lists itself or the same target twice
//   - CLOSED and CANCELLED have no outbound transitions
//   - every status has a progress value in [0, 100]
//   - progress never decreases along order.HappyPath()
func NewOrderWorkflow(def WorkflowDefinition) (*OrderWorkflow, error) {
	w := &OrderWorkflow{
		transitions: make(map[order.Status][]order.Status, len(def.Transitions)),
		permissions: make(map[order.Status]map[order.Role]struct{}, len(def.Permissions)),
		progress:    make(map[order.Status]int, len(def.Progress)),
		labels:      make(map[order.Status]StatusLabel, len(order.AllStatuses())),
		guard:       guard.NewConstructorGuard(),
	}

	var problems []error

	for from, targets := range def.Transitions {
		if err := from.Validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		if (from == order.Closed || from == order.Cancelled) && len(targets) > 0 {
			problems = append(problems, fmt.Errorf("%s is terminal and cannot have transitions", from))
			continue
		}
		next := make([]order.Status, 0, len(targets))
		for _, to := range targets {
			switch {
			case to.Validate() != nil:
				problems = append(problems, to.Validate())
			case to == from:
				problems = append(problems, fmt.Errorf("%s cannot transition to itself", from))
			case slices.Contains(next, to):
				problems = append(problems, fmt.Errorf("%s lists %s twice", from, to))
			default:
				next = append(next, to)
			}
		}
		if len(next) > 0 {
			w.transitions[from] = next
		}
	}

	for target, roles := range def.Permissions {
		if err := target.Validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		allowed := make(map[order.Role]struct{}, len(roles))
		for _, r := range roles {
			if err := r.Validate(); err != nil {
				problems = append(problems, err)
				continue
			}
			allowed[r] = struct{}{}
		}
		w.permissions[target] = allowed
	}

	for _, s := range order.AllStatuses() {
		pct, ok := def.Progress[s]
		switch {
		case !ok:
			problems = append(problems, fmt.Errorf("progress for %s is missing", s))
		case pct < 0 || pct > 100:
			problems = append(problems, errs.NewValueIsOutOfRangeError("progress of "+s.String(), pct, 0, 100))
		default:
			w.progress[s] = pct
		}

		if l, ok := def.Labels[s]; ok && l.Label != "" {
			w.labels[s] = l
		} else {
			w.labels[s] = StatusLabel{Label: humanize(s), Description: l.Description}
		}
	}

	path := order.HappyPath()
	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]
		if pPrev, ok1 := w.progress[prev]; ok1 {
			if pCur, ok2 := w.progress[cur]; ok2 && pCur < pPrev {
				problems = append(problems, fmt.Errorf("progress decreases from %s (%d) to %s (%d)", prev, pPrev, cur, pCur))
			}
		}
	}

	if len(problems) > 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("workflow definition", errors.Join(problems...))
	}
	return w, nil
}

// DefaultOrderWorkflow builds the workflow from DefaultWorkflowDefinition.
// It panics if the built-in tables are inconsistent, which tests rule out.
func DefaultOrderWorkflow() *OrderWorkflow {
	w, err := NewOrderWorkflow(DefaultWorkflowDefinition())
	if err != nil {
		panic(fmt.Sprintf("default workflow definition is invalid: %v", err))
	}
	return w
}

// Validate ensures the workflow was built through NewOrderWorkflow.
func (w *OrderWorkflow) Validate() error {
	if w == nil {
		return ErrOrderWorkflowIsNotConstructed
	}
	return w.guard.Validate(ErrOrderWorkflowIsNotConstructed)
}

// Next returns the statuses reachable from from in one step, for any role.
func (w *OrderWorkflow) Next(from order.Status) []order.Status {
	return slices.Clone(w.transitions[from])
}

// IsTerminal reports whether no transition leaves s.
func (w *OrderWorkflow) IsTerminal(s order.Status) bool {
	return len(w.transitions[s]) == 0
}

// AvailableTransitions lists the next steps role may take from from, in
// configured order. The current status is never included.
func (w *OrderWorkflow) AvailableTransitions(from order.Status, role order.Role) ([]TransitionOption, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}

	options := make([]TransitionOption, 0, len(w.transitions[from]))
	for _, to := range w.transitions[from] {
		if !w.mayEnter(to, role) {
			continue
		}
		l := w.labels[to]
		options = append(options, TransitionOption{Status: to, Label: l.Label, Description: l.Description})
	}
	return options, nil
}

// Authorize checks a requested change without performing it.
//
// Checks run in this order:
//   - from or to outside the enumeration: order.ErrInvalidState
//   - to equals from: order.ErrRedundantTransition
//   - to not adjacent to from: order.ErrIllegalTransition
//   - role not allowed to enter to: order.ErrUnauthorizedTransition
//
// An invalid role is reported as errs.ErrValueIsInvalid.
func (w *OrderWorkflow) Authorize(from, to order.Status, role order.Role) error {
	if err := from.Validate(); err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if err := role.Validate(); err != nil {
		return err
	}
	if from == to {
		return order.NewRedundantTransitionError(from)
	}
	if !slices.Contains(w.transitions[from], to) {
		return order.NewIllegalTransitionError(from, to)
	}
	if !w.mayEnter(to, role) {
		return order.NewUnauthorizedTransitionError(from, to, role)
	}
	return nil
}

// Progress returns the completion percentage of s.
func (w *OrderWorkflow) Progress(s order.Status) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return w.progress[s], nil
}

// Label returns the display text for transitions into s.
func (w *OrderWorkflow) Label(s order.Status) StatusLabel {
	return w.labels[s]
}

// Edges lists every arc of the graph in status declaration order, with the
// explicitly permitted roles (ADMIN and MANAGER are implied and not listed).
func (w *OrderWorkflow) Edges() []Edge {
	var edges []Edge
	for _, from := range order.AllStatuses() {
		for _, to := range w.transitions[from] {
			edges = append(edges, Edge{From: from, To: to, Roles: w.rolesFor(to), Label: w.labels[to].Label})
		}
	}
	return edges
}

// Definition returns a copy of the tables, suitable for EncodeWorkflowDefinition.
func (w *OrderWorkflow) Definition() WorkflowDefinition {
	def := WorkflowDefinition{
		Transitions: make(map[order.Status][]order.Status, len(w.transitions)),
		Permissions: make(map[order.Status][]order.Role, len(w.permissions)),
		Progress:    make(map[order.Status]int, len(w.progress)),
		Labels:      make(map[order.Status]StatusLabel, len(w.labels)),
	}
	for from, next := range w.transitions {
		def.Transitions[from] = slices.Clone(next)
	}
	for target := range w.permissions {
		def.Permissions[target] = w.rolesFor(target)
	}
	for s, pct := range w.progress {
		def.Progress[s] = pct
	}
	for s, l := range w.labels {
		def.Labels[s] = l
	}
	return def
}

func (w *OrderWorkflow) mayEnter(to order.Status, role order.Role) bool {
	if role.IsEscalated() {
		return true
	}
	_, ok := w.permissions[to][role]
	return ok
}

func (w *OrderWorkflow) rolesFor(to order.Status) []order.Role {
	roles := make([]order.Role, 0, len(w.permissions[to]))
	for _, r := range order.AllRoles() {
		if _, ok := w.permissions[to][r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

func humanize(s order.Status) string {
	name := strings.ToLower(strings.ReplaceAll(s.String(), "_", " "))
	return strings.ToUpper(name[:1]) + name[1:]
}
