package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"griddle/internal/registry"
)

func manualRunArgs(extra ...string) []string {
	args := []string{"run", "--strategy", "manual", "--start", "10", "--end", "20", "--pre-pad", "0", "--post-pad", "0"}
	return append(args, extra...)
}

func TestRunBakesExplicitIDs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	host := &fakeHost{
		items: []registry.WorkItem{
			{ID: "hero_rig", Readiness: registry.ReadinessReady},
			{ID: "crowd_rig", Readiness: registry.ReadinessNotReady},
		},
		readiness: map[string]registry.Readiness{
			"hero_rig":  registry.ReadinessReady,
			"crowd_rig": registry.ReadinessNotReady,
		},
	}
	useFakeHost(t, host)

	out, _, err := runCLI(t, manualRunArgs("crowd_rig", "--yes"), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(host.processed) != 1 || host.processed[0] != "crowd_rig" {
		t.Fatalf("expected one bake of crowd_rig, got %v", host.processed)
	}
	requireContains(t, out, "Baking 1 items over 10..20")
	requireContains(t, out, "baked 1, skipped 0, failed 0, canceled 0")
}

func TestRunSkipsReadyItems(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	host := &fakeHost{
		items: []registry.WorkItem{
			{ID: "hero_rig", Readiness: registry.ReadinessReady},
			{ID: "crowd_rig", Readiness: registry.ReadinessNotReady},
		},
		readiness: map[string]registry.Readiness{
			"hero_rig":  registry.ReadinessReady,
			"crowd_rig": registry.ReadinessNotReady,
		},
	}
	useFakeHost(t, host)

	out, _, err := runCLI(t, manualRunArgs("--all", "--yes"), "")
	if err != nil {
		t.Fatalf("run --all: %v", err)
	}
	if len(host.processed) != 1 || host.processed[0] != "crowd_rig" {
		t.Fatalf("expected ready item skipped, processed %v", host.processed)
	}
	requireContains(t, out, "baked 1, skipped 1, failed 0, canceled 0")
}

func TestRunRejectsUnknownID(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	useFakeHost(t, &fakeHost{
		items: []registry.WorkItem{{ID: "hero_rig", Readiness: registry.ReadinessReady}},
	})

	_, _, err := runCLI(t, manualRunArgs("no_such_rig", "--yes"), "")
	if err == nil || !strings.Contains(err.Error(), "unknown item id") {
		t.Fatalf("expected unknown id error, got %v", err)
	}
}

func TestRunWithoutIDsRequiresAll(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	useFakeHost(t, &fakeHost{
		items: []registry.WorkItem{{ID: "hero_rig", Readiness: registry.ReadinessNotReady}},
	})

	_, _, err := runCLI(t, manualRunArgs("--yes"), "")
	if err == nil || !strings.Contains(err.Error(), "--all") {
		t.Fatalf("expected guidance toward --all, got %v", err)
	}
}

func TestRunAllPromptsForConfirmation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	host := &fakeHost{
		items: []registry.WorkItem{{ID: "hero_rig", Readiness: registry.ReadinessNotReady}},
		readiness: map[string]registry.Readiness{
			"hero_rig": registry.ReadinessNotReady,
		},
	}
	useFakeHost(t, host)

	out, _, err := runCLI(t, manualRunArgs("--all"), "n\n")
	if err != nil {
		t.Fatalf("run --all: %v", err)
	}
	requireContains(t, out, "Aborted.")
	if len(host.processed) != 0 {
		t.Fatalf("declined run must not bake, processed %v", host.processed)
	}

	out, _, err = runCLI(t, manualRunArgs("--all"), "y\n")
	if err != nil {
		t.Fatalf("run --all confirmed: %v", err)
	}
	requireContains(t, out, "baked 1")
	if len(host.processed) != 1 {
		t.Fatalf("confirmed run should bake, processed %v", host.processed)
	}
}

func TestRunCancellationSettlesRemainderAndPrintsSummary(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	host := &fakeHost{
		items: []registry.WorkItem{
			{ID: "x0", Readiness: registry.ReadinessNotReady},
			{ID: "x1", Readiness: registry.ReadinessNotReady},
			{ID: "x2", Readiness: registry.ReadinessNotReady},
		},
		readiness: map[string]registry.Readiness{
			"x0": registry.ReadinessNotReady,
			"x1": registry.ReadinessNotReady,
			"x2": registry.ReadinessNotReady,
		},
	}
	useFakeHost(t, host)

	ctx, cancel := context.WithCancel(context.Background())
	host.processFn = func(id string) error {
		if id == "x0" {
			cancel()
		}
		return nil
	}

	out, _, err := runCLIContext(t, ctx, manualRunArgs("--all", "--yes"), "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from interrupted run, got %v", err)
	}
	if len(host.processed) != 1 || host.processed[0] != "x0" {
		t.Fatalf("expected only x0 baked before cancellation, got %v", host.processed)
	}
	requireContains(t, out, "baked 1, skipped 0, failed 0, canceled 2")
}

func TestRunAppliesWindowAndInversionWarning(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	host := &fakeHost{
		items: []registry.WorkItem{{ID: "hero_rig", Readiness: registry.ReadinessNotReady}},
		readiness: map[string]registry.Readiness{
			"hero_rig": registry.ReadinessNotReady,
		},
	}
	useFakeHost(t, host)

	out, _, err := runCLI(t, []string{
		"run", "hero_rig", "--yes",
		"--strategy", "manual", "--start", "50", "--end", "10",
		"--pre-pad", "0", "--post-pad", "0",
		"--apply-window",
	}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Warning:")
	requireContains(t, out, "Baking 1 items over 10..50")
	if host.appliedMin != 10 || host.appliedMax != 50 {
		t.Fatalf("expected window 10..50, got %d..%d", host.appliedMin, host.appliedMax)
	}
}
