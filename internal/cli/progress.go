package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ProgressCmd prints the completion percentage of a status.
func ProgressCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "progress STATUS",
		Short: "Show the progress percentage of a status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := loadWorkflow(file)
			if err != nil {
				return err
			}
			status, err := statusArg(args[0])
			if err != nil {
				return err
			}
			pct, err := wf.Progress(status)
			if err != nil {
				return err
			}

			suffix := ""
			if wf.IsTerminal(status) {
				suffix = " " + color.New(color.FgYellow).Sprint("(terminal)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d%%%s\n", status, pct, suffix)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition YAML (default: built-in)")
	return cmd
}
