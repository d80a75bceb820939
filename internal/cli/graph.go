package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// GraphCmd prints every edge of the workflow as a table.
func GraphCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the transition table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := loadWorkflow(file)
			if err != nil {
				return err
			}

			rows := make([][]string, 0)
			for _, e := range wf.Edges() {
				pct, _ := wf.Progress(e.To)
				rows = append(rows, []string{
					e.From.String(),
					e.To.String(),
					e.Label,
					roleNames(e.Roles),
					fmt.Sprintf("%d%%", pct),
				})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"From", "To", "Action", "Roles", "Progress"})
			if err = table.Bulk(rows); err != nil {
				return err
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition YAML (default: built-in)")
	return cmd
}
