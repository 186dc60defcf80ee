package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newItemsCommand(ctx *commandContext) *cobra.Command {
	var filter string
	var hideReady bool
	var onlyMarked bool

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List work items from the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if _, err := s.RefreshInventory(cmd.Context()); err != nil {
				return fmt.Errorf("refresh inventory: %w", err)
			}
			s.SetFilter(filter)
			s.SetHideReady(hideReady)
			rows := s.SetOnlyMarked(onlyMarked)

			snap := s.Snapshot()
			readiness := make(map[string]string, len(snap.Items))
			names := make(map[string]string, len(snap.Items))
			for _, item := range snap.Items {
				readiness[item.ID] = string(item.Readiness)
				names[item.ID] = item.DisplayName
			}

			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.ID,
					names[row.ID],
					readiness[row.ID],
					snap.Status(row.ID).Label(),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"ID", "NAME", "READINESS", "STATUS"}, tableRows))
			summary := s.Summary()
			fmt.Fprintf(out, "%d items (%d shown)\n", summary.Total, len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring filter on the composed label")
	cmd.Flags().BoolVar(&hideReady, "hide-ready", false, "Hide items whose readiness flag is set")
	cmd.Flags().BoolVar(&onlyMarked, "only-marked", false, "Show only marked items")
	return cmd
}
