package batch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"griddle/internal/batch"
	"griddle/internal/logging"
	"griddle/internal/registry"
)

type scriptedProcessor struct {
	calls    []string
	failures map[string]error
	panics   map[string]string
	onCall   func(id string)
}

func (p *scriptedProcessor) Process(_ context.Context, id string, start, end int) error {
	p.calls = append(p.calls, id)
	if p.onCall != nil {
		p.onCall(id)
	}
	if msg, ok := p.panics[id]; ok {
		panic(msg)
	}
	if err, ok := p.failures[id]; ok {
		return err
	}
	return nil
}

type fixedProber map[string]registry.Readiness

func (p fixedProber) ReadReadiness(_ context.Context, id string) (registry.Readiness, error) {
	if readiness, ok := p[id]; ok {
		return readiness, nil
	}
	return registry.ReadinessUnknown, errors.New("flag unreadable")
}

func newRegistry(ids ...string) *registry.Registry {
	reg := registry.New()
	items := make([]registry.WorkItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, registry.WorkItem{ID: id, Readiness: registry.ReadinessNotReady})
	}
	reg.Refresh(items)
	return reg
}

func TestRunLogsSettledStatusPerItem(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	proc := &scriptedProcessor{failures: map[string]error{"b": errors.New("boom")}}
	runner := batch.NewRunner(newRegistry("a", "b"), proc, nil, logger)

	runner.Run(context.Background(), []string{"a", "b"}, 1, 10, batch.Options{})

	logged := buf.String()
	if !strings.Contains(logged, `"status":"baked"`) {
		t.Fatalf("expected a baked status field in logs:\n%s", logged)
	}
	if !strings.Contains(logged, `"status":"failed"`) {
		t.Fatalf("expected a failed status field in logs:\n%s", logged)
	}
}

func TestRunEmptyInputIsNoOp(t *testing.T) {
	proc := &scriptedProcessor{}
	runner := batch.NewRunner(newRegistry(), proc, nil, logging.NewNop())

	results := runner.Run(context.Background(), nil, 1, 10, batch.Options{})
	if len(results) != 0 {
		t.Fatalf("expected empty map, got %v", results)
	}
	if len(proc.calls) != 0 {
		t.Fatalf("expected no processing calls, got %v", proc.calls)
	}
}

func TestRunAllItemsReachTerminalStatus(t *testing.T) {
	reg := newRegistry("a", "b", "c")
	proc := &scriptedProcessor{failures: map[string]error{"b": errors.New("rig exploded")}}
	runner := batch.NewRunner(reg, proc, nil, logging.NewNop())

	results := runner.Run(context.Background(), []string{"a", "b", "c"}, 1, 10, batch.Options{})

	want := map[string]registry.Status{
		"a": registry.StatusBaked,
		"b": registry.StatusFailed,
		"c": registry.StatusBaked,
	}
	for id, status := range want {
		if results[id] != status {
			t.Fatalf("item %s: expected %s, got %s", id, status, results[id])
		}
		if reg.Status(id) != status {
			t.Fatalf("registry %s: expected %s, got %s", id, status, reg.Status(id))
		}
		if !results[id].IsTerminal() {
			t.Fatalf("item %s left non-terminal", id)
		}
	}
}

func TestRunFailureNeverAbortsRemainder(t *testing.T) {
	reg := newRegistry("x0", "x1", "x2")
	proc := &scriptedProcessor{failures: map[string]error{"x0": errors.New("boom")}}
	runner := batch.NewRunner(reg, proc, nil, logging.NewNop())

	runner.Run(context.Background(), []string{"x0", "x1", "x2"}, 1, 2, batch.Options{})
	if len(proc.calls) != 3 {
		t.Fatalf("expected all items attempted, got %v", proc.calls)
	}
}

func TestRunContainsPanics(t *testing.T) {
	reg := newRegistry("a", "b")
	proc := &scriptedProcessor{panics: map[string]string{"a": "host crashed"}}
	runner := batch.NewRunner(reg, proc, nil, logging.NewNop())

	results := runner.Run(context.Background(), []string{"a", "b"}, 1, 2, batch.Options{})
	if results["a"] != registry.StatusFailed {
		t.Fatalf("panicking item should settle failed, got %s", results["a"])
	}
	if results["b"] != registry.StatusBaked {
		t.Fatalf("item after panic should still run, got %s", results["b"])
	}
}

func TestRunSkipPolicyUsesLiveReadiness(t *testing.T) {
	reg := newRegistry("ready", "stale")
	prober := fixedProber{"ready": registry.ReadinessReady, "stale": registry.ReadinessNotReady}
	proc := &scriptedProcessor{}
	runner := batch.NewRunner(reg, proc, prober, logging.NewNop())

	results := runner.Run(context.Background(), []string{"ready", "stale"}, 1, 2, batch.Options{SkipReady: true})
	if results["ready"] != registry.StatusSkipped {
		t.Fatalf("expected skipped, got %s", results["ready"])
	}
	if results["stale"] != registry.StatusBaked {
		t.Fatalf("expected baked, got %s", results["stale"])
	}
	if len(proc.calls) != 1 || proc.calls[0] != "stale" {
		t.Fatalf("skipped item must not reach the processor: %v", proc.calls)
	}
}

func TestRunSkipPolicyDisabledProcessesReadyItems(t *testing.T) {
	reg := newRegistry("ready")
	prober := fixedProber{"ready": registry.ReadinessReady}
	proc := &scriptedProcessor{}
	runner := batch.NewRunner(reg, proc, prober, logging.NewNop())

	results := runner.Run(context.Background(), []string{"ready"}, 1, 2, batch.Options{SkipReady: false})
	if results["ready"] != registry.StatusBaked {
		t.Fatalf("expected baked with skip policy off, got %s", results["ready"])
	}
}

func TestRunProbeFailureTreatedAsUnknown(t *testing.T) {
	reg := newRegistry("odd")
	proc := &scriptedProcessor{}
	runner := batch.NewRunner(reg, proc, fixedProber{}, logging.NewNop())

	results := runner.Run(context.Background(), []string{"odd"}, 1, 2, batch.Options{SkipReady: true})
	if results["odd"] != registry.StatusBaked {
		t.Fatalf("unreadable flag should not skip, got %s", results["odd"])
	}
}

func TestRunCancellationSettlesRemainderCanceled(t *testing.T) {
	reg := newRegistry("x0", "x1", "x2", "x3", "x4")
	ctx, cancel := context.WithCancel(context.Background())

	proc := &scriptedProcessor{failures: map[string]error{"x1": errors.New("boom")}}
	proc.onCall = func(id string) {
		if id == "x2" {
			// Request cancellation mid-run; it must only be observed at the
			// next item boundary.
			cancel()
		}
	}
	runner := batch.NewRunner(reg, proc, nil, logging.NewNop())

	results := runner.Run(ctx, []string{"x0", "x1", "x2", "x3", "x4"}, 1, 2, batch.Options{})

	want := map[string]registry.Status{
		"x0": registry.StatusBaked,
		"x1": registry.StatusFailed,
		"x2": registry.StatusBaked,
		"x3": registry.StatusCanceled,
		"x4": registry.StatusCanceled,
	}
	for id, status := range want {
		if results[id] != status {
			t.Fatalf("item %s: expected %s, got %s (results %v)", id, status, results[id], results)
		}
	}
	if len(proc.calls) != 3 {
		t.Fatalf("canceled items must not be processed: %v", proc.calls)
	}
}

func TestRunLeavesOtherIDsUntouched(t *testing.T) {
	reg := newRegistry("in", "out")
	runner := batch.NewRunner(reg, &scriptedProcessor{}, nil, logging.NewNop())

	runner.Run(context.Background(), []string{"in"}, 1, 2, batch.Options{})
	if got := reg.Status("out"); got != registry.StatusPending {
		t.Fatalf("id outside the input list changed status: %s", got)
	}
}

func TestRunReportsProgressAndYields(t *testing.T) {
	reg := newRegistry("a", "b")
	var progress [][2]int
	var progressIDs []string
	yields := 0

	runner := batch.NewRunner(reg, &scriptedProcessor{}, nil, logging.NewNop())
	runner.Run(context.Background(), []string{"a", "b"}, 1, 2, batch.Options{
		Progress: func(done, total int, id string) {
			progress = append(progress, [2]int{done, total})
			progressIDs = append(progressIDs, id)
		},
		Yield: func() { yields++ },
	})

	if len(progress) != 2 || progress[0] != [2]int{1, 2} || progress[1] != [2]int{2, 2} {
		t.Fatalf("unexpected progress sequence: %v", progress)
	}
	if progressIDs[0] != "a" || progressIDs[1] != "b" {
		t.Fatalf("unexpected progress ids: %v", progressIDs)
	}
	if yields != 2 {
		t.Fatalf("expected a yield per item, got %d", yields)
	}
}
