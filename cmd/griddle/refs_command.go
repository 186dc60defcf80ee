package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRefsCommand(ctx *commandContext) *cobra.Command {
	refsCmd := &cobra.Command{
		Use:   "refs",
		Short: "Broken-reference utilities",
	}

	refsCmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "List broken references without touching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			refs, err := s.ScanBrokenReferences(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan references: %w", err)
			}
			rows := make([][]string, 0, len(refs))
			for _, ref := range refs {
				rows = append(rows, []string{ref.ID, ref.Content})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"ID", "CONTENT"}, rows))
			fmt.Fprintf(out, "%d broken references\n", len(refs))
			return nil
		},
	})

	var yes bool
	muteCmd := &cobra.Command{
		Use:   "mute",
		Short: "Blank broken references in the host",
		Long: `Mute blanks every broken reference. The undo backup lives only for the
process lifetime; during a run the restore happens automatically, but a
standalone mute leaves the references blank.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, "Blank all broken references? This cannot be undone from the command line.") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			muted, err := s.MuteBrokenReferences(cmd.Context())
			if err != nil {
				return fmt.Errorf("mute references: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Muted %d broken references\n", muted)
			return nil
		},
	}
	muteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	refsCmd.AddCommand(muteCmd)

	return refsCmd
}
