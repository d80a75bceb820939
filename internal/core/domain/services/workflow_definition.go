package services

import (
	"errors"
	"fmt"
	"io"

	"orderflow/internal/core/domain/model/order"

	"gopkg.in/yaml.v3"
)

// StatusLabel is the text shown for a transition into a status.
type StatusLabel struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// WorkflowDefinition is the raw table set an OrderWorkflow is built from.
//
// Transitions maps a status to its ordered next statuses. Permissions maps a
// target status to the roles allowed to move an order into it; ADMIN and
// MANAGER are implied for every target and need not be listed. Progress maps
// every status to a percentage. Labels are optional.
type WorkflowDefinition struct {
	Transitions map[order.Status][]order.Status
	Permissions map[order.Status][]order.Role
	Progress    map[order.Status]int
	Labels      map[order.Status]StatusLabel
}

// DefaultWorkflowDefinition returns the built-in apparel order lifecycle.
func DefaultWorkflowDefinition() WorkflowDefinition {
	resumable := []order.Status{
		order.Intake, order.DesignPending, order.DesignApproval, order.Confirmed,
		order.ProductionPlanned, order.InProgress, order.QC, order.Packing,
		order.ReadyForDelivery, order.Cancelled,
	}

	return WorkflowDefinition{
		Transitions: map[order.Status][]order.Status{
			order.Intake:            {order.DesignPending, order.OnHold, order.Cancelled},
			order.DesignPending:     {order.DesignApproval, order.OnHold, order.Cancelled},
			order.DesignApproval:    {order.Confirmed, order.DesignPending, order.OnHold, order.Cancelled},
			order.Confirmed:         {order.ProductionPlanned, order.OnHold, order.Cancelled},
			order.ProductionPlanned: {order.InProgress, order.OnHold, order.Cancelled},
			order.InProgress:        {order.QC, order.OnHold, order.Cancelled},
			order.QC:                {order.Packing, order.InProgress, order.OnHold},
			order.Packing:           {order.ReadyForDelivery, order.OnHold},
			order.ReadyForDelivery:  {order.Delivered, order.OnHold},
			order.Delivered:         {order.Closed},
			order.OnHold:            resumable,
		},
		Permissions: map[order.Status][]order.Role{
			order.Intake:            {order.CSR},
			order.DesignPending:     {order.CSR, order.Designer},
			order.DesignApproval:    {order.Designer},
			order.Confirmed:         {order.Client, order.CSR},
			order.ProductionPlanned: {order.Planner},
			order.InProgress:        {order.Planner, order.Operator},
			order.QC:                {order.Operator, order.QCInspector},
			order.Packing:           {order.QCInspector},
			order.ReadyForDelivery:  {order.Packer},
			order.Delivered:         {order.Dispatcher},
			order.Closed:            {order.CSR},
			order.OnHold:            {order.CSR},
			order.Cancelled:         {order.CSR},
		},
		Progress: map[order.Status]int{
			order.Intake:            0,
			order.DesignPending:     10,
			order.DesignApproval:    20,
			order.Confirmed:         30,
			order.ProductionPlanned: 40,
			order.InProgress:        55,
			order.QC:                70,
			order.Packing:           80,
			order.ReadyForDelivery:  90,
			order.Delivered:         95,
			order.Closed:            100,
			order.OnHold:            0,
			order.Cancelled:         0,
		},
		Labels: map[order.Status]StatusLabel{
			order.Intake:            {"Reopen intake", "Return the order to intake for re-qualification"},
			order.DesignPending:     {"Start design", "Hand the artwork brief to the design team"},
			order.DesignApproval:    {"Submit for approval", "Send proofs to the client for sign-off"},
			order.Confirmed:         {"Confirm order", "Design approved; lock specs, sizes and pricing"},
			order.ProductionPlanned: {"Plan production", "Schedule cutting, printing and sewing routes"},
			order.InProgress:        {"Start production", "Release work orders to the floor"},
			order.QC:                {"Send to QC", "Inspect finished pieces against the approved design"},
			order.Packing:           {"Pass QC", "Move inspected goods to packing"},
			order.ReadyForDelivery:  {"Mark ready", "Cartons packed and labelled for dispatch"},
			order.Delivered:         {"Mark delivered", "Shipment received by the client"},
			order.Closed:            {"Close order", "Archive the order after delivery and invoicing"},
			order.OnHold:            {"Put on hold", "Pause all work until the issue is resolved"},
			order.Cancelled:         {"Cancel order", "Stop the order permanently"},
		},
	}
}

// yamlDefinition is the on-disk form, keyed by wire names.
type yamlDefinition struct {
	Transitions map[string][]string    `yaml:"transitions"`
	Permissions map[string][]string    `yaml:"permissions"`
	Progress    map[string]int         `yaml:"progress,omitempty"`
	Labels      map[string]StatusLabel `yaml:"labels,omitempty"`
}

// LoadWorkflowDefinition reads a YAML workflow definition:
//
//	transitions:
//	  INTAKE: [DESIGN_PENDING, CANCELLED]
//	permissions:
//	  DESIGN_PENDING: [CSR]
//	progress:          # optional, defaults to the built-in table
//	  INTAKE: 0
//	labels:            # optional, defaults to the built-in labels
//	  DESIGN_PENDING: {label: Start design, description: ...}
//
// Unknown keys, status names and role names are rejected. The result still has
// to pass NewOrderWorkflow before it can be used.
func LoadWorkflowDefinition(r io.Reader) (WorkflowDefinition, error) {
	var raw yamlDefinition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return WorkflowDefinition{}, fmt.Errorf("decode workflow definition: %w", err)
	}

	defaults := DefaultWorkflowDefinition()
	def := WorkflowDefinition{
		Transitions: make(map[order.Status][]order.Status, len(raw.Transitions)),
		Permissions: make(map[order.Status][]order.Role, len(raw.Permissions)),
		Progress:    defaults.Progress,
		Labels:      defaults.Labels,
	}

	var problems []error
	for from, targets := range raw.Transitions {
		fromStatus, err := order.ParseStatus(from)
		if err != nil {
			problems = append(problems, fmt.Errorf("transitions: %w", err))
			continue
		}
		for _, to := range targets {
			toStatus, toErr := order.ParseStatus(to)
			if toErr != nil {
				problems = append(problems, fmt.Errorf("transitions[%s]: %w", from, toErr))
				continue
			}
			def.Transitions[fromStatus] = append(def.Transitions[fromStatus], toStatus)
		}
	}

	for target, roles := range raw.Permissions {
		targetStatus, err := order.ParseStatus(target)
		if err != nil {
			problems = append(problems, fmt.Errorf("permissions: %w", err))
			continue
		}
		for _, name := range roles {
			role, roleErr := order.ParseRole(name)
			if roleErr != nil {
				problems = append(problems, fmt.Errorf("permissions[%s]: %w", target, roleErr))
				continue
			}
			def.Permissions[targetStatus] = append(def.Permissions[targetStatus], role)
		}
	}

	if len(raw.Progress) > 0 {
		def.Progress = make(map[order.Status]int, len(raw.Progress))
		for name, pct := range raw.Progress {
			s, err := order.ParseStatus(name)
			if err != nil {
				problems = append(problems, fmt.Errorf("progress: %w", err))
				continue
			}
			def.Progress[s] = pct
		}
	}

	if len(raw.Labels) > 0 {
		labels := make(map[order.Status]StatusLabel, len(defaults.Labels))
		for s, l := range defaults.Labels {
			labels[s] = l
		}
		for name, l := range raw.Labels {
			s, err := order.ParseStatus(name)
			if err != nil {
				problems = append(problems, fmt.Errorf("labels: %w", err))
				continue
			}
			labels[s] = l
		}
		def.Labels = labels
	}

	if len(problems) > 0 {
		return WorkflowDefinition{}, errors.Join(problems...)
	}
	return def, nil
}

// EncodeWorkflowDefinition writes def in the format LoadWorkflowDefinition reads.
func EncodeWorkflowDefinition(w io.Writer, def WorkflowDefinition) error {
	raw := yamlDefinition{
		Transitions: make(map[string][]string, len(def.Transitions)),
		Permissions: make(map[string][]string, len(def.Permissions)),
		Progress:    make(map[string]int, len(def.Progress)),
		Labels:      make(map[string]StatusLabel, len(def.Labels)),
	}
	for from, targets := range def.Transitions {
		names := make([]string, 0, len(targets))
		for _, to := range targets {
			names = append(names, to.String())
		}
		raw.Transitions[from.String()] = names
	}
	for target, roles := range def.Permissions {
		names := make([]string, 0, len(roles))
		for _, r := range roles {
			names = append(names, r.String())
		}
		raw.Permissions[target.String()] = names
	}
	for s, pct := range def.Progress {
		raw.Progress[s.String()] = pct
	}
	for s, l := range def.Labels {
		raw.Labels[s.String()] = l
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return err
	}
	return enc.Close()
}
