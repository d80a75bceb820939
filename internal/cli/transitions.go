package cli

import (
	"fmt"

	"orderflow/internal/core/domain/model/order"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// TransitionsCmd lists what a role may do with an order in a given status.
func TransitionsCmd() *cobra.Command {
	var (
		file string
		role string
	)

	cmd := &cobra.Command{
		Use:   "transitions STATUS",
		Short: "List transitions available to a role from a status",
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
			r, err := order.ParseRole(role)
			if err != nil {
				return err
			}

			options, err := wf.AvailableTransitions(status, r)
			if err != nil {
				return err
			}
			if len(options) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
					color.New(color.FgYellow).Sprintf("%s has no transitions from %s", r, status))
				return nil
			}

			rows := make([][]string, 0, len(options))
			for _, opt := range options {
				rows = append(rows, []string{opt.Status.String(), opt.Label, opt.Description})
			}
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"To", "Action", "Description"})
			if err = table.Bulk(rows); err != nil {
				return err
			}
			return table.Render()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "workflow definition YAML (default: built-in)")
	cmd.Flags().StringVarP(&role, "role", "r", "", "acting role, e.g. DESIGNER")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
