package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"griddle/internal/logging"
	"griddle/internal/registry"
)

// Processor is the external per-item processing operation. The call is
// synchronous and non-reentrant; the runner never overlaps two invocations.
type Processor interface {
	Process(ctx context.Context, id string, start, end int) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, id string, start, end int) error

func (f ProcessorFunc) Process(ctx context.Context, id string, start, end int) error {
	return f(ctx, id, start, end)
}

// ReadinessProber re-reads an item's readiness flag just before processing.
// Read failures are treated as ReadinessUnknown, never as fatal.
type ReadinessProber interface {
	ReadReadiness(ctx context.Context, id string) (registry.Readiness, error)
}

// ProgressFunc receives (done, total, id) after each settled item.
type ProgressFunc func(done, total int, id string)

// Options tunes one batch pass.
type Options struct {
	// SkipReady settles items whose live readiness flag reports already
	// processed as Skipped without invoking the processor.
	SkipReady bool
	Progress  ProgressFunc
	// Yield is the cooperative checkpoint invoked between items so a host
	// event pump can redraw and register cancellation requests.
	Yield func()
}

// Runner drives one sequential, cancellable pass over an ordered id list,
// writing terminal statuses into the registry as it goes.
type Runner struct {
	reg    *registry.Registry
	proc   Processor
	probe  ReadinessProber
	logger *slog.Logger
}

// NewRunner wires a runner. probe may be nil when no skip policy is used.
func NewRunner(reg *registry.Registry, proc Processor, probe ReadinessProber, logger *slog.Logger) *Runner {
	return &Runner{
		reg:    reg,
		proc:   proc,
		probe:  probe,
		logger: logging.NewComponentLogger(logger, "batch"),
	}
}

// Run processes ids in order against the resolved [start, end] interval.
//
// Cancellation is polled from ctx before each item starts; once observed, the
// current and all remaining items settle as Canceled while already-finalized
// items keep their actual outcome. A per-item failure settles that item as
// Failed and never aborts the rest. Every id in the input ends with a
// terminal status; ids not in the input are untouched. An empty input
// returns an empty map without any host calls.
func (r *Runner) Run(ctx context.Context, ids []string, start, end int, opts Options) map[string]registry.Status {
	results := make(map[string]registry.Status, len(ids))
	if len(ids) == 0 {
		return results
	}

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("batch started",
		logging.Int("total", len(ids)),
		logging.Int("start", start),
		logging.Int("end", end),
	)

	total := len(ids)
	for k, id := range ids {
		if ctx.Err() != nil {
			for _, rest := range ids[k:] {
				r.settle(results, rest, registry.StatusCanceled)
			}
			logger.Info("batch canceled",
				logging.Int("completed", k),
				logging.Int("canceled", total-k),
			)
			return results
		}

		if opts.SkipReady && r.readiness(ctx, id) == registry.ReadinessReady {
			r.settle(results, id, registry.StatusSkipped)
			logger.Info("item skipped",
				logging.String(logging.FieldItemID, id),
				logging.String(logging.FieldStatus, string(registry.StatusSkipped)),
				logging.String("reason", "readiness flag set"),
			)
			r.checkpoint(opts, k+1, total, id)
			continue
		}

		if err := r.processOne(ctx, id, start, end); err != nil {
			r.settle(results, id, registry.StatusFailed)
			logger.Warn("item failed",
				logging.String(logging.FieldItemID, id),
				logging.String(logging.FieldStatus, string(registry.StatusFailed)),
				logging.Error(err),
			)
		} else {
			r.settle(results, id, registry.StatusBaked)
			logger.Info("item baked",
				logging.String(logging.FieldItemID, id),
				logging.String(logging.FieldStatus, string(registry.StatusBaked)),
			)
		}
		r.checkpoint(opts, k+1, total, id)
	}

	logger.Info("batch finished", logging.Int("total", total))
	return results
}

func (r *Runner) settle(results map[string]registry.Status, id string, status registry.Status) {
	r.reg.SetStatus(id, status)
	results[id] = status
}

func (r *Runner) checkpoint(opts Options, done, total int, id string) {
	if opts.Progress != nil {
		opts.Progress(done, total, id)
	}
	if opts.Yield != nil {
		opts.Yield()
	}
}

func (r *Runner) readiness(ctx context.Context, id string) registry.Readiness {
	if r.probe == nil {
		return registry.ReadinessUnknown
	}
	readiness, err := r.probe.ReadReadiness(ctx, id)
	if err != nil {
		return registry.ReadinessUnknown
	}
	return readiness
}

// processOne contains the per-item failure boundary. The processing
// collaborator is host glue, so panics are contained alongside errors.
func (r *Runner) processOne(ctx context.Context, id string, start, end int) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("processing panic: %v", recovered)
		}
	}()
	return r.proc.Process(ctx, id, start, end)
}
