package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"griddle/internal/config"
	"griddle/internal/exprguard"
	"griddle/internal/registry"
	"griddle/internal/session"
)

type fakeHost struct {
	items     []registry.WorkItem
	readiness map[string]registry.Readiness

	processed []string
	processFn func(id string) error

	refs        []exprguard.BrokenRef
	refContents map[string]string

	windowMin, windowMax int
	appliedMin           int
	appliedMax           int

	wiped []string
}

func (h *fakeHost) List(context.Context) ([]registry.WorkItem, error) {
	return h.items, nil
}

func (h *fakeHost) ReadReadiness(_ context.Context, id string) (registry.Readiness, error) {
	if readiness, ok := h.readiness[id]; ok {
		return readiness, nil
	}
	return registry.ReadinessUnknown, nil
}

func (h *fakeHost) Process(_ context.Context, id string, start, end int) error {
	h.processed = append(h.processed, id)
	if h.processFn != nil {
		return h.processFn(id)
	}
	return nil
}

func (h *fakeHost) Scan(context.Context) ([]exprguard.BrokenRef, error) {
	return h.refs, nil
}

func (h *fakeHost) SetContent(_ context.Context, id, content string) error {
	if h.refContents == nil {
		h.refContents = map[string]string{}
	}
	h.refContents[id] = content
	return nil
}

func (h *fakeHost) Exists(_ context.Context, id string) (bool, error) {
	_, ok := h.refContents[id]
	return ok, nil
}

func (h *fakeHost) Current(context.Context) (int, int, error) {
	return h.windowMin, h.windowMax, nil
}

func (h *fakeHost) Set(_ context.Context, min, max int) error {
	h.appliedMin, h.appliedMax = min, max
	return nil
}

func (h *fakeHost) Wipe(context.Context) ([]string, error) {
	return h.wiped, nil
}

func useFakeHost(t *testing.T, host *fakeHost) {
	t.Helper()
	original := sessionFactory
	sessionFactory = func(_ *config.Config, logger *slog.Logger) (*session.Session, error) {
		return session.New(session.Collaborators{
			Inventory:    host,
			Processor:    host,
			Window:       host,
			WindowSetter: host,
			Scanner:      host,
			Editor:       host,
			Cleaner:      host,
		}, logger), nil
	}
	t.Cleanup(func() {
		sessionFactory = original
	})
}

func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, stdin)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	configPath := filepath.Join(t.TempDir(), "missing.toml")
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
