// Package registry tracks the work-item inventory for one bake session.
//
// It owns three pieces of state: the ordered inventory snapshot delivered by
// the host, the operator's marked set, and the per-item status lattice
// (pending, baked, skipped, failed, canceled). A status is seeded from the
// readiness flag only the first time an id is observed; afterwards only the
// batch orchestrator writes it. The marked set is always a subset of the
// current inventory.
//
// Treat this package as the single source of truth for item lifecycle
// semantics; everything else reads through Snapshot.
package registry
