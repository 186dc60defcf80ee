package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWipeCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete auxiliary timeline data from the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if s.WipeIsDestructive() && !yes && !confirm(cmd, "Delete all auxiliary timeline data?") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			deleted, err := s.WipeAuxiliaryData(cmd.Context())
			if err != nil {
				return fmt.Errorf("wipe auxiliary data: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, name := range deleted {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(out, "Wiped %d auxiliary entries\n", len(deleted))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
