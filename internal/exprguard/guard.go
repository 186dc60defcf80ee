package exprguard

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"griddle/internal/logging"
)

// BrokenRef is one external reference whose content points at missing nodes.
type BrokenRef struct {
	ID      string
	Content string
}

// Scanner discovers broken references in the host.
type Scanner interface {
	Scan(ctx context.Context) ([]BrokenRef, error)
}

// RefEditor reassigns reference content in the host.
type RefEditor interface {
	SetContent(ctx context.Context, id, content string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// Guard snapshots and blanks broken references before a run and restores
// them afterwards. The backup lives for exactly one mute/restore cycle.
type Guard struct {
	mu     sync.Mutex
	editor RefEditor
	logger *slog.Logger
	backup map[string]string
}

// NewGuard wires a guard around the given editor.
func NewGuard(editor RefEditor, logger *slog.Logger) *Guard {
	return &Guard{
		editor: editor,
		logger: logging.NewComponentLogger(logger, "exprguard"),
		backup: make(map[string]string),
	}
}

// Mute snapshots each ref's original content and blanks it. A fresh backup
// replaces any leftover from an earlier cycle. Per-ref blanking failures are
// logged and do not abort the rest; the backup entry stays so Restore still
// rewrites the original content. Returns the backup size.
func (g *Guard) Mute(ctx context.Context, refs []BrokenRef) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.backup = make(map[string]string, len(refs))
	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		g.backup[ref.ID] = ref.Content
		if err := g.editor.SetContent(ctx, ref.ID, ""); err != nil {
			g.logger.Warn("could not mute reference",
				logging.String("ref", ref.ID),
				logging.Error(err),
			)
			continue
		}
		g.logger.Info("muted broken reference", logging.String("ref", ref.ID))
	}
	return len(g.backup)
}

// Restore reassigns the original content for every backed-up ref that still
// exists, then clears the backup unconditionally; entries whose ref vanished
// are dropped, not retried. Restoring an empty backup is a no-op, so calling
// Restore twice is always safe.
func (g *Guard) Restore(ctx context.Context) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	restored := 0
	for _, id := range sortedKeys(g.backup) {
		content := g.backup[id]
		exists, err := g.editor.Exists(ctx, id)
		if err != nil || !exists {
			g.logger.Warn("reference vanished before restore", logging.String("ref", id))
			continue
		}
		if err := g.editor.SetContent(ctx, id, content); err != nil {
			g.logger.Warn("could not restore reference",
				logging.String("ref", id),
				logging.Error(err),
			)
			continue
		}
		restored++
		g.logger.Info("restored reference", logging.String("ref", id))
	}
	g.backup = make(map[string]string)
	return restored
}

// BackupSize reports how many refs are currently backed up.
func (g *Guard) BackupSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.backup)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
