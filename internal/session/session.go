package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"griddle/internal/batch"
	"griddle/internal/exprguard"
	"griddle/internal/framerange"
	"griddle/internal/logging"
	"griddle/internal/registry"
	"griddle/internal/view"
)

// InventoryProvider enumerates work items and re-reads readiness flags.
type InventoryProvider interface {
	List(ctx context.Context) ([]registry.WorkItem, error)
	ReadReadiness(ctx context.Context, id string) (registry.Readiness, error)
}

// WindowSetter applies the resolved interval to the host's playback window.
type WindowSetter interface {
	Set(ctx context.Context, min, max int) error
}

// AuxiliaryCleaner deletes host-side auxiliary timeline data. Destructive;
// the presentation layer confirms before calling.
type AuxiliaryCleaner interface {
	Wipe(ctx context.Context) ([]string, error)
}

// Collaborators bundles every host-side contract a session consumes. Window,
// WindowSetter, Scanner, Editor, and Cleaner are optional; commands needing a
// missing collaborator return an error or no-op.
type Collaborators struct {
	Inventory    InventoryProvider
	Processor    batch.Processor
	Candidates   framerange.CandidateProvider
	Reader       framerange.AttributeReader
	Window       framerange.WindowProvider
	WindowSetter WindowSetter
	Scanner      exprguard.Scanner
	Editor       exprguard.RefEditor
	Cleaner      AuxiliaryCleaner
}

// Session owns the orchestration state for one operator-supervised run: the
// registry, the current filter predicates, the mute guard, and the batch
// runner. One session maps to one host scene for the process lifetime;
// nothing is persisted.
type Session struct {
	mu      sync.Mutex
	logger  *slog.Logger
	collab  Collaborators
	reg     *registry.Registry
	query   view.Query
	guard   *exprguard.Guard
	runner  *batch.Runner
	ranges  *framerange.Resolver
	running bool
}

// ErrRunInProgress is returned when a batch is started while another pass
// over the same session is still running.
var ErrRunInProgress = errors.New("batch run already in progress")

// New wires a session from its collaborators.
func New(collab Collaborators, logger *slog.Logger) *Session {
	logger = logging.NewComponentLogger(logger, "session")
	reg := registry.New()
	s := &Session{
		logger: logger,
		collab: collab,
		reg:    reg,
		ranges: framerange.NewResolver(collab.Candidates, collab.Reader, collab.Window, logger),
		runner: batch.NewRunner(reg, collab.Processor, readinessProber{collab.Inventory}, logger),
	}
	if collab.Editor != nil {
		s.guard = exprguard.NewGuard(collab.Editor, logger)
	}
	return s
}

// readinessProber adapts the inventory provider to the batch runner's
// narrower contract.
type readinessProber struct {
	inventory InventoryProvider
}

func (p readinessProber) ReadReadiness(ctx context.Context, id string) (registry.Readiness, error) {
	if p.inventory == nil {
		return registry.ReadinessUnknown, nil
	}
	return p.inventory.ReadReadiness(ctx, id)
}

// RefreshInventory replaces the registry's inventory snapshot from the host
// and returns the recomputed view.
func (s *Session) RefreshInventory(ctx context.Context) ([]view.Row, error) {
	if s.collab.Inventory == nil {
		return nil, errors.New("no inventory provider configured")
	}
	items, err := s.collab.Inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	s.reg.Refresh(items)
	s.logger.Info("inventory refreshed", logging.Int("items", len(items)))
	return s.View(), nil
}

// Mark adds ids to the marked set and returns the recomputed view.
func (s *Session) Mark(ids ...string) []view.Row {
	s.reg.Mark(ids...)
	return s.View()
}

// Unmark removes ids from the marked set and returns the recomputed view.
func (s *Session) Unmark(ids ...string) []view.Row {
	s.reg.Unmark(ids...)
	return s.View()
}

// Toggle flips marks on ids and returns the recomputed view.
func (s *Session) Toggle(ids ...string) []view.Row {
	s.reg.Toggle(ids...)
	return s.View()
}

// ClearMarks empties the marked set and returns the recomputed view.
func (s *Session) ClearMarks() []view.Row {
	s.reg.ClearMarks()
	return s.View()
}

// SetFilter updates the text filter and returns the recomputed view.
func (s *Session) SetFilter(text string) []view.Row {
	s.mu.Lock()
	s.query.Filter = text
	s.mu.Unlock()
	return s.View()
}

// SetHideReady updates the hide-ready predicate and returns the view.
func (s *Session) SetHideReady(hide bool) []view.Row {
	s.mu.Lock()
	s.query.HideReady = hide
	s.mu.Unlock()
	return s.View()
}

// SetOnlyMarked updates the only-marked predicate and returns the view.
func (s *Session) SetOnlyMarked(only bool) []view.Row {
	s.mu.Lock()
	s.query.OnlyMarked = only
	s.mu.Unlock()
	return s.View()
}

// View recomputes the visible list from the current snapshot and predicates.
func (s *Session) View() []view.Row {
	s.mu.Lock()
	query := s.query
	s.mu.Unlock()
	return view.Compute(s.reg.Snapshot(), query)
}

// Summary returns the headline counts for the current snapshot.
func (s *Session) Summary() view.Summary {
	return view.Summarize(s.reg.Snapshot())
}

// Snapshot exposes the registry snapshot for presentation layers.
func (s *Session) Snapshot() registry.Snapshot {
	return s.reg.Snapshot()
}

// MarkedIDs returns the marked set in sorted order.
func (s *Session) MarkedIDs() []string {
	return s.reg.MarkedIDs()
}

// AllIDs returns the current inventory ids in enumeration order.
func (s *Session) AllIDs() []string {
	return s.reg.AllIDs()
}

// NothingMarked reports whether the marked set is empty. The presentation
// layer uses this to decide whether to offer a process-everything prompt;
// the core never prompts.
func (s *Session) NothingMarked() bool {
	return len(s.reg.MarkedIDs()) == 0
}

// ResolveRange computes the bake interval for spec.
func (s *Session) ResolveRange(ctx context.Context, spec framerange.Spec) (framerange.Result, error) {
	return s.ranges.Resolve(ctx, spec)
}

// ScanBrokenReferences lists broken references without modifying anything.
func (s *Session) ScanBrokenReferences(ctx context.Context) ([]exprguard.BrokenRef, error) {
	if s.collab.Scanner == nil {
		return nil, errors.New("no broken-reference scanner configured")
	}
	return s.collab.Scanner.Scan(ctx)
}

// MuteBrokenReferences scans for broken references and blanks them, storing
// a backup for RestoreMutedReferences. Returns the backup size.
func (s *Session) MuteBrokenReferences(ctx context.Context) (int, error) {
	if s.collab.Scanner == nil || s.guard == nil {
		return 0, errors.New("no broken-reference scanner configured")
	}
	refs, err := s.collab.Scanner.Scan(ctx)
	if err != nil {
		return 0, err
	}
	return s.guard.Mute(ctx, refs), nil
}

// RestoreMutedReferences restores the muted backup. Safe to call with an
// empty or already-consumed backup.
func (s *Session) RestoreMutedReferences(ctx context.Context) int {
	if s.guard == nil {
		return 0
	}
	return s.guard.Restore(ctx)
}

// MutedBackupSize reports the current mute backup size.
func (s *Session) MutedBackupSize() int {
	if s.guard == nil {
		return 0
	}
	return s.guard.BackupSize()
}

// WipeIsDestructive reports whether WipeAuxiliaryData would touch the host.
// Presentation layers gate their confirmation prompt on it.
func (s *Session) WipeIsDestructive() bool {
	return s.collab.Cleaner != nil
}

// WipeAuxiliaryData deletes host-side auxiliary timeline data. Callers must
// confirm with the operator first; the session just sequences the call.
func (s *Session) WipeAuxiliaryData(ctx context.Context) ([]string, error) {
	if s.collab.Cleaner == nil {
		return nil, errors.New("no auxiliary cleaner configured")
	}
	deleted, err := s.collab.Cleaner.Wipe(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("auxiliary data wiped", logging.Int("deleted", len(deleted)))
	return deleted, nil
}
