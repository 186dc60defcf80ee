package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"griddle/internal/registry"
	"griddle/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var rangeOpts rangeFlags
	var all bool
	var yes bool
	var skipReady bool
	var mute bool
	var restore bool
	var applyWindow bool
	var wipeAux bool

	cmd := &cobra.Command{
		Use:   "run [item-id ...]",
		Short: "Bake the given items sequentially",
		Long: `Run bakes the named items in inventory order. With no ids, --all bakes
every item in the inventory after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lockPath := runLockPath()
			if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
				return fmt.Errorf("prepare run lock: %w", err)
			}
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another griddle run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			if _, err := s.RefreshInventory(cmd.Context()); err != nil {
				return fmt.Errorf("refresh inventory: %w", err)
			}

			ids, err := pickRunIDs(s, args, all)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to bake.")
				return nil
			}
			if len(args) == 0 && !yes {
				question := fmt.Sprintf("Bake all %d items?", len(ids))
				if !confirm(cmd, question) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			spec, err := rangeOpts.spec(cfg.Range.Strategy, cfg.Range.PrePad, cfg.Range.PostPad, cfg.Range.Fallback)
			if err != nil {
				return err
			}
			result, err := s.ResolveRange(cmd.Context(), spec)
			if err != nil {
				return fmt.Errorf("resolve range: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			fmt.Fprintf(out, "Baking %d items over %d..%d\n", len(ids), result.Start, result.End)

			req := session.RunRequest{
				IDs:                ids,
				Start:              result.Start,
				End:                result.End,
				SkipReady:          cfg.Batch.SkipReady,
				MuteExpressions:    cfg.Batch.MuteExpressions,
				RestoreExpressions: cfg.Batch.RestoreExpressions,
				ApplyWindow:        applyWindow,
				Progress: func(done, total int, id string) {
					fmt.Fprintf(out, "[%d/%d] %s\n", done, total, id)
				},
			}
			if cmd.Flags().Changed("skip-ready") {
				req.SkipReady = skipReady
			}
			if cmd.Flags().Changed("mute") {
				req.MuteExpressions = mute
			}
			if cmd.Flags().Changed("restore") {
				req.RestoreExpressions = restore
			}

			doWipe := cfg.Batch.WipeAuxiliary
			if cmd.Flags().Changed("wipe-aux") {
				doWipe = wipeAux
			}
			if doWipe && s.WipeIsDestructive() {
				if !yes && !confirm(cmd, "Delete auxiliary timeline data before baking?") {
					doWipe = false
				}
			}
			if doWipe {
				deleted, err := s.WipeAuxiliaryData(cmd.Context())
				if err != nil {
					return fmt.Errorf("wipe auxiliary data: %w", err)
				}
				fmt.Fprintf(out, "Wiped %d auxiliary entries\n", len(deleted))
			}

			results, err := s.RunBatch(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderRunSummary(results))
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return nil
		},
	}

	rangeOpts.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "Bake every item when no ids are given")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompts")
	cmd.Flags().BoolVar(&skipReady, "skip-ready", false, "Skip items whose readiness flag is already set")
	cmd.Flags().BoolVar(&mute, "mute", false, "Mute broken references for the duration of the pass")
	cmd.Flags().BoolVar(&restore, "restore", false, "Restore muted references after the pass")
	cmd.Flags().BoolVar(&applyWindow, "apply-window", false, "Set the host playback window to the resolved interval")
	cmd.Flags().BoolVar(&wipeAux, "wipe-aux", false, "Delete auxiliary timeline data before baking")
	return cmd
}

// pickRunIDs resolves the batch membership: explicit args are validated
// against the inventory, otherwise --all selects everything.
func pickRunIDs(s *session.Session, args []string, all bool) ([]string, error) {
	if len(args) > 0 {
		known := make(map[string]struct{})
		for _, id := range s.AllIDs() {
			known[id] = struct{}{}
		}
		for _, id := range args {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("unknown item id %q", id)
			}
		}
		s.Mark(args...)
		return s.MarkedIDs(), nil
	}
	if !s.NothingMarked() {
		return s.MarkedIDs(), nil
	}
	if !all {
		return nil, errors.New("no item ids given; pass ids or use --all to bake everything")
	}
	return s.AllIDs(), nil
}

func renderRunSummary(results map[string]registry.Status) string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	counts := make(map[registry.Status]int)
	for _, id := range ids {
		rows = append(rows, []string{id, results[id].Label()})
		counts[results[id]]++
	}

	summary := renderTable([]string{"ID", "RESULT"}, rows)
	line := fmt.Sprintf("\nbaked %d, skipped %d, failed %d, canceled %d",
		counts[registry.StatusBaked],
		counts[registry.StatusSkipped],
		counts[registry.StatusFailed],
		counts[registry.StatusCanceled],
	)
	return summary + line
}
