// Package cli implements workflowctl, the operator tool for inspecting and
// validating order workflow definitions offline.
package cli

import (
	"strings"

	"orderflow/internal/adapters/out/workflowfile"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the workflowctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "workflowctl",
		Short: "Inspect and validate order workflow definitions",
		Long: `workflowctl works on the same workflow tables the order service enforces.
Without --file every command uses the built-in apparel workflow.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if off, _ := cmd.Flags().GetBool("no-color"); off {
			color.NoColor = true
		}
	}

	root.AddCommand(GraphCmd())
	root.AddCommand(ValidateCmd())
	root.AddCommand(ProgressCmd())
	root.AddCommand(TransitionsCmd())
	root.AddCommand(ExportCmd())
	return root
}

func loadWorkflow(path string) (*services.OrderWorkflow, error) {
	if strings.TrimSpace(path) == "" {
		return services.DefaultOrderWorkflow(), nil
	}
	return workflowfile.Load(path)
}

func statusArg(arg string) (order.Status, error) {
	return order.ParseStatus(strings.ToUpper(strings.TrimSpace(arg)))
}

func roleNames(roles []order.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
