package framerange

import (
	"context"
	"fmt"
	"log/slog"

	"griddle/internal/logging"
	"griddle/internal/services"
)

// CandidateProvider enumerates the candidates exposing head/tail attributes.
type CandidateProvider interface {
	List(ctx context.Context) ([]string, error)
}

// WindowProvider reports the host's current fixed window.
type WindowProvider interface {
	Current(ctx context.Context) (min, max int, err error)
}

// Resolver computes a normalized bake interval from a Spec.
type Resolver struct {
	candidates CandidateProvider
	reader     AttributeReader
	window     WindowProvider
	logger     *slog.Logger
}

// NewResolver wires a resolver from its collaborators. Any of them may be nil
// when the corresponding strategy is never used.
func NewResolver(candidates CandidateProvider, reader AttributeReader, window WindowProvider, logger *slog.Logger) *Resolver {
	return &Resolver{
		candidates: candidates,
		reader:     reader,
		window:     window,
		logger:     logging.NewComponentLogger(logger, "framerange"),
	}
}

// Resolve computes the interval for spec. Inverted raw values are swapped
// with a warning rather than rejected. Candidate attribute failures either
// fall back to the window strategy (spec.Fallback) or surface as a fatal
// error tagged services.ErrAttributeRead.
func (r *Resolver) Resolve(ctx context.Context, spec Spec) (Result, error) {
	switch spec.Strategy {
	case StrategyCandidates:
		return r.resolveCandidates(ctx, spec)
	case StrategyWindow:
		return r.resolveWindow(ctx, spec, nil)
	case StrategyManual:
		return finishResult(spec.ManualStart-spec.PrePad, spec.ManualEnd+spec.PostPad, nil, false), nil
	default:
		return Result{}, services.Wrap(services.ErrConfiguration, "framerange", "resolve", fmt.Sprintf("unknown strategy %q", spec.Strategy), nil)
	}
}

type candidateRange struct {
	id   string
	head int
	tail int
}

func (r *Resolver) resolveCandidates(ctx context.Context, spec Spec) (Result, error) {
	head, tail, err := r.candidateBounds(ctx, spec)
	if err != nil {
		if !spec.Fallback {
			return Result{}, err
		}
		r.logger.Warn("candidate attributes unreadable; falling back to current window",
			logging.Error(err),
		)
		warning := fmt.Sprintf("candidate attributes unreadable (%v); using current window", err)
		return r.resolveWindow(ctx, spec, []string{warning})
	}
	return finishResult(head-spec.PrePad, tail+spec.PostPad, nil, false), nil
}

func (r *Resolver) candidateBounds(ctx context.Context, spec Spec) (int, int, error) {
	if r.candidates == nil || r.reader == nil {
		return 0, 0, services.Wrap(services.ErrConfiguration, "framerange", "candidates", "no candidate provider configured", nil)
	}
	ids, err := r.candidates.List(ctx)
	if err != nil {
		return 0, 0, services.Wrap(services.ErrAttributeRead, "framerange", "list candidates", "", err)
	}

	readable := make([]candidateRange, 0, len(ids))
	for _, id := range ids {
		head, headErr := r.reader.Read(ctx, id, AttrHead)
		tail, tailErr := r.reader.Read(ctx, id, AttrTail)
		if headErr != nil || tailErr != nil {
			// Per-candidate read failures exclude the candidate, never
			// abort resolution.
			r.logger.Debug("excluding unreadable candidate",
				logging.String("candidate", id),
			)
			continue
		}
		readable = append(readable, candidateRange{id: id, head: head, tail: tail})
	}

	head, err := r.pickHead(ctx, spec.FirstRef, readable)
	if err != nil {
		return 0, 0, err
	}
	tail, err := r.pickTail(ctx, spec.LastRef, readable)
	if err != nil {
		return 0, 0, err
	}
	return head, tail, nil
}

func (r *Resolver) pickHead(ctx context.Context, ref string, readable []candidateRange) (int, error) {
	if ref != "" {
		value, err := r.reader.Read(ctx, ref, AttrHead)
		if err != nil {
			return 0, services.Wrap(services.ErrAttributeRead, "framerange", "read head", ref, err)
		}
		return value, nil
	}
	if len(readable) == 0 {
		return 0, services.Wrap(services.ErrAttributeRead, "framerange", "pick first", "no candidates with readable attributes", nil)
	}
	best := readable[0]
	for _, candidate := range readable[1:] {
		// Strict comparison keeps the first-encountered candidate on ties.
		if candidate.head < best.head {
			best = candidate
		}
	}
	return best.head, nil
}

func (r *Resolver) pickTail(ctx context.Context, ref string, readable []candidateRange) (int, error) {
	if ref != "" {
		value, err := r.reader.Read(ctx, ref, AttrTail)
		if err != nil {
			return 0, services.Wrap(services.ErrAttributeRead, "framerange", "read tail", ref, err)
		}
		return value, nil
	}
	if len(readable) == 0 {
		return 0, services.Wrap(services.ErrAttributeRead, "framerange", "pick last", "no candidates with readable attributes", nil)
	}
	best := readable[0]
	for _, candidate := range readable[1:] {
		if candidate.tail > best.tail {
			best = candidate
		}
	}
	return best.tail, nil
}

func (r *Resolver) resolveWindow(ctx context.Context, spec Spec, warnings []string) (Result, error) {
	if r.window == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "framerange", "window", "no window provider configured", nil)
	}
	min, max, err := r.window.Current(ctx)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "framerange", "read current window", "", err)
	}
	return finishResult(min-spec.PrePad, max+spec.PostPad, warnings, len(warnings) > 0), nil
}

func finishResult(start, end int, warnings []string, usedFallback bool) Result {
	normalStart, normalEnd, swapped := Normalize(start, end)
	if swapped {
		warnings = append(warnings, fmt.Sprintf("start %d greater than end %d; values swapped", start, end))
	}
	return Result{Start: normalStart, End: normalEnd, Warnings: warnings, UsedFallback: usedFallback}
}
