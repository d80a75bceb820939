package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ValidateCmd checks a YAML definition against every workflow rule.
func ValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a workflow definition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := loadWorkflow(file)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgRed).Sprint("INVALID"), file)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d transitions)\n",
				color.New(color.FgGreen).Sprint("OK"), file, len(wf.Edges()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition YAML")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
