// Package services holds domain logic that does not belong to a single
// aggregate.
//
// The package includes:
//   - OrderWorkflow: the legal transition graph, role permissions and progress
//     table of the order lifecycle, built once and shared immutably
//   - WorkflowDefinition: the raw tables, with a built-in default and a YAML
//     loader for per-workspace customization
//   - WorkflowRegistry: workspace to workflow resolution with a fallback
package services
