package registry

import (
	"sort"
	"sync"
)

// Registry owns the canonical work-item inventory, the marked set, and the
// per-item status lattice for one in-memory session. All access is serialized
// by an internal mutex; callers never observe partial updates.
type Registry struct {
	mu        sync.Mutex
	items     []WorkItem
	readiness map[string]Readiness
	statuses  map[string]Status
	marked    map[string]struct{}
	seen      map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		readiness: make(map[string]Readiness),
		statuses:  make(map[string]Status),
		marked:    make(map[string]struct{}),
		seen:      make(map[string]struct{}),
	}
}

// Refresh replaces the inventory snapshot. Marks on vanished ids are pruned.
// Ids never seen before have their status seeded from the readiness flag;
// this seeding happens at most once per id for the lifetime of the session,
// so later refreshes never overwrite an existing status even when the
// readiness flag flips. Statuses of vanished ids are retained so a
// re-appearing id keeps its history.
func (r *Registry) Refresh(items []WorkItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make([]WorkItem, 0, len(items))
	present := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		r.items = append(r.items, item)
		present[item.ID] = struct{}{}
		r.readiness[item.ID] = item.Readiness

		if _, ok := r.seen[item.ID]; ok {
			continue
		}
		r.seen[item.ID] = struct{}{}
		if _, ok := r.statuses[item.ID]; ok {
			continue
		}
		if item.Readiness == ReadinessReady {
			r.statuses[item.ID] = StatusBaked
		} else {
			r.statuses[item.ID] = StatusPending
		}
	}

	for id := range r.marked {
		if _, ok := present[id]; !ok {
			delete(r.marked, id)
		}
	}
}

// Mark adds the given ids to the marked set. Ids not present in the current
// inventory are ignored silently.
func (r *Registry) Mark(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	present := r.presentLocked()
	for _, id := range ids {
		if _, ok := present[id]; ok {
			r.marked[id] = struct{}{}
		}
	}
}

// Unmark removes the given ids from the marked set.
func (r *Registry) Unmark(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.marked, id)
	}
}

// Toggle flips the mark on each id. Ids not present in the current inventory
// are ignored silently.
func (r *Registry) Toggle(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	present := r.presentLocked()
	for _, id := range ids {
		if _, marked := r.marked[id]; marked {
			delete(r.marked, id)
			continue
		}
		if _, ok := present[id]; ok {
			r.marked[id] = struct{}{}
		}
	}
}

// ClearMarks empties the marked set.
func (r *Registry) ClearMarks() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marked = make(map[string]struct{})
}

// SetStatus overwrites an item's status unconditionally. This is the live-run
// write path used by the batch orchestrator; the refresh seeding rule does
// not apply here.
func (r *Registry) SetStatus(id string, status Status) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	r.seen[id] = struct{}{}
}

// Status returns the item's current status, defaulting to StatusPending for
// ids never seen.
func (r *Registry) Status(id string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.statuses[id]; ok {
		return status
	}
	return StatusPending
}

// MarkedIDs returns the marked set in sorted order.
func (r *Registry) MarkedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.marked))
	for id := range r.marked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AllIDs returns the ids of the current inventory in enumeration order.
func (r *Registry) AllIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.items))
	for _, item := range r.items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Snapshot returns an immutable copy of the registry contents.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Items:     make([]WorkItem, len(r.items)),
		Readiness: make(map[string]Readiness, len(r.readiness)),
		Statuses:  make(map[string]Status, len(r.statuses)),
		Marked:    make(map[string]struct{}, len(r.marked)),
	}
	copy(snap.Items, r.items)
	for id, readiness := range r.readiness {
		snap.Readiness[id] = readiness
	}
	for id, status := range r.statuses {
		snap.Statuses[id] = status
	}
	for id := range r.marked {
		snap.Marked[id] = struct{}{}
	}
	return snap
}

func (r *Registry) presentLocked() map[string]struct{} {
	present := make(map[string]struct{}, len(r.items))
	for _, item := range r.items {
		present[item.ID] = struct{}{}
	}
	return present
}

// Snapshot is a point-in-time, caller-owned view of the registry.
type Snapshot struct {
	Items     []WorkItem
	Readiness map[string]Readiness
	Statuses  map[string]Status
	Marked    map[string]struct{}
}

// Status returns the snapshot status for id, defaulting to StatusPending.
func (s Snapshot) Status(id string) Status {
	if status, ok := s.Statuses[id]; ok {
		return status
	}
	return StatusPending
}

// IsMarked reports whether id is in the snapshot marked set.
func (s Snapshot) IsMarked(id string) bool {
	_, ok := s.Marked[id]
	return ok
}

// MarkedCount returns the size of the snapshot marked set.
func (s Snapshot) MarkedCount() int {
	return len(s.Marked)
}
