package view

import (
	"strings"

	"golang.org/x/text/cases"

	"griddle/internal/registry"
)

// Query holds the three operator-controlled filter predicates.
type Query struct {
	Filter     string
	HideReady  bool
	OnlyMarked bool
}

// Row is one visible list entry. Identity is ID; Label is presentation only.
type Row struct {
	ID    string
	Label string
}

// Compute derives the ordered, filtered, labeled list from a registry
// snapshot. Order follows inventory enumeration order. An item is included
// when it passes HideReady and OnlyMarked, and when Filter is empty or a
// case-insensitive substring of the composed label.
func Compute(snap registry.Snapshot, query Query) []Row {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query.Filter))

	rows := make([]Row, 0, len(snap.Items))
	for _, item := range snap.Items {
		if query.HideReady && item.Readiness == registry.ReadinessReady {
			continue
		}
		if query.OnlyMarked && !snap.IsMarked(item.ID) {
			continue
		}
		label := Label(item, snap.IsMarked(item.ID), snap.Status(item.ID))
		if needle != "" && !strings.Contains(fold.String(label), needle) {
			continue
		}
		rows = append(rows, Row{ID: item.ID, Label: label})
	}
	return rows
}

// Label composes the row label from mark state, id, display name and status.
func Label(item registry.WorkItem, marked bool, status registry.Status) string {
	mark := "[ ]"
	if marked {
		mark = "[*]"
	}
	core := item.ID
	if item.DisplayName != "" && item.DisplayName != item.ID {
		core = item.ID + " / " + item.DisplayName
	}
	return mark + " " + core + "    " + status.Label()
}

// MapSelection re-maps a previously selected id set onto the given rows.
// Selection survives by identity, not by row index: filtering can reorder or
// drop rows, so positions are meaningless across recomputes.
func MapSelection(rows []Row, selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		wanted[id] = struct{}{}
	}
	kept := make([]string, 0, len(selected))
	for _, row := range rows {
		if _, ok := wanted[row.ID]; ok {
			kept = append(kept, row.ID)
		}
	}
	return kept
}

// Counts tallies the current inventory per status.
func Counts(snap registry.Snapshot) map[registry.Status]int {
	counts := make(map[registry.Status]int, len(registry.AllStatuses()))
	for _, item := range snap.Items {
		counts[snap.Status(item.ID)]++
	}
	return counts
}

// Summary aggregates the headline numbers the presentation layer shows above
// the list.
type Summary struct {
	Total  int
	Marked int
	Counts map[registry.Status]int
}

// Summarize builds a Summary from a snapshot.
func Summarize(snap registry.Snapshot) Summary {
	return Summary{
		Total:  len(snap.Items),
		Marked: snap.MarkedCount(),
		Counts: Counts(snap),
	}
}
