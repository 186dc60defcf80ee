package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"griddle/internal/framerange"
)

type rangeFlags struct {
	strategy string
	prePad   int
	postPad  int
	start    int
	end      int
	firstRef string
	lastRef  string
	noFall   bool
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", "", "Range strategy: candidates, window, or manual")
	cmd.Flags().IntVar(&f.prePad, "pre-pad", -1, "Frames subtracted before the resolved start")
	cmd.Flags().IntVar(&f.postPad, "post-pad", -1, "Frames added after the resolved end")
	cmd.Flags().IntVar(&f.start, "start", 0, "Manual start frame")
	cmd.Flags().IntVar(&f.end, "end", 0, "Manual end frame")
	cmd.Flags().StringVar(&f.firstRef, "first-ref", "", "Candidate id supplying the head value")
	cmd.Flags().StringVar(&f.lastRef, "last-ref", "", "Candidate id supplying the tail value")
	cmd.Flags().BoolVar(&f.noFall, "no-fallback", false, "Fail instead of falling back to the window strategy")
}

// spec merges flag overrides over configured defaults.
func (f *rangeFlags) spec(strategy string, prePad, postPad int, fallback bool) (framerange.Spec, error) {
	if f.strategy != "" {
		strategy = f.strategy
	}
	parsed, ok := framerange.ParseStrategy(strategy)
	if !ok {
		return framerange.Spec{}, fmt.Errorf("unknown range strategy %q", strategy)
	}
	if f.prePad >= 0 {
		prePad = f.prePad
	}
	if f.postPad >= 0 {
		postPad = f.postPad
	}
	if f.noFall {
		fallback = false
	}
	return framerange.Spec{
		Strategy:    parsed,
		PrePad:      prePad,
		PostPad:     postPad,
		FirstRef:    f.firstRef,
		LastRef:     f.lastRef,
		ManualStart: f.start,
		ManualEnd:   f.end,
		Fallback:    fallback,
	}, nil
}

func newRangeCommand(ctx *commandContext) *cobra.Command {
	var flags rangeFlags

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Resolve the bake interval without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := ctx.buildSession(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			spec, err := flags.spec(cfg.Range.Strategy, cfg.Range.PrePad, cfg.Range.PostPad, cfg.Range.Fallback)
			if err != nil {
				return err
			}
			result, err := s.ResolveRange(cmd.Context(), spec)
			if err != nil {
				return fmt.Errorf("resolve range: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Strategy: %s\n", spec.Strategy)
			fmt.Fprintf(out, "Interval: %d..%d\n", result.Start, result.End)
			fmt.Fprintf(out, "Fallback used: %s\n", yesNo(result.UsedFallback))
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
