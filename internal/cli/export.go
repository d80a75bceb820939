package cli

import (
	"orderflow/internal/core/domain/services"

	"github.com/spf13/cobra"
)

// ExportCmd writes a workflow as YAML, a starting point for workspace overrides.
func ExportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a workflow definition as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := loadWorkflow(file)
			if err != nil {
				return err
			}
			return services.EncodeWorkflowDefinition(cmd.OutOrStdout(), wf.Definition())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition YAML (default: built-in)")
	return cmd
}
