package registry_test

import (
	"reflect"
	"testing"

	"griddle/internal/registry"
)

func item(id string, readiness registry.Readiness) registry.WorkItem {
	return registry.WorkItem{ID: id, DisplayName: id + " rig", Readiness: readiness}
}

func TestRefreshSeedsFromReadiness(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{
		item("hero", registry.ReadinessReady),
		item("crowd", registry.ReadinessNotReady),
		item("prop", registry.ReadinessUnknown),
	})

	if got := reg.Status("hero"); got != registry.StatusBaked {
		t.Fatalf("ready item should seed baked, got %s", got)
	}
	if got := reg.Status("crowd"); got != registry.StatusPending {
		t.Fatalf("not-ready item should seed pending, got %s", got)
	}
	if got := reg.Status("prop"); got != registry.StatusPending {
		t.Fatalf("unknown readiness should seed pending, got %s", got)
	}
}

func TestSeedingHappensOncePerID(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{item("hero", registry.ReadinessNotReady)})
	if got := reg.Status("hero"); got != registry.StatusPending {
		t.Fatalf("expected pending seed, got %s", got)
	}

	// Readiness flips on a later refresh; the status must not be re-derived.
	reg.Refresh([]registry.WorkItem{item("hero", registry.ReadinessReady)})
	if got := reg.Status("hero"); got != registry.StatusPending {
		t.Fatalf("refresh overwrote seeded status: %s", got)
	}

	// Even across a disappearance and re-appearance.
	reg.SetStatus("hero", registry.StatusFailed)
	reg.Refresh(nil)
	reg.Refresh([]registry.WorkItem{item("hero", registry.ReadinessReady)})
	if got := reg.Status("hero"); got != registry.StatusFailed {
		t.Fatalf("re-appearance reseeded status: %s", got)
	}
}

func TestRefreshPrunesVanishedMarks(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{
		item("a", registry.ReadinessNotReady),
		item("b", registry.ReadinessNotReady),
	})
	reg.Mark("a", "b")

	reg.Refresh([]registry.WorkItem{item("b", registry.ReadinessNotReady)})
	if got := reg.MarkedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected only surviving mark, got %v", got)
	}
}

func TestMarkIgnoresUnknownIDs(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{item("a", registry.ReadinessNotReady)})

	reg.Mark("a", "ghost")
	if got := reg.MarkedIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unknown id should be ignored, got %v", got)
	}
}

func TestMarkUnmarkRestoresPriorSet(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{
		item("a", registry.ReadinessNotReady),
		item("b", registry.ReadinessNotReady),
		item("c", registry.ReadinessNotReady),
	})
	reg.Mark("a")

	before := reg.MarkedIDs()
	reg.Mark("b", "c")
	reg.Unmark("b", "c")
	if got := reg.MarkedIDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("mark+unmark should restore prior set: before=%v after=%v", before, got)
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{
		item("a", registry.ReadinessNotReady),
		item("b", registry.ReadinessNotReady),
	})
	reg.Mark("a")

	before := reg.MarkedIDs()
	reg.Toggle("a", "b")
	reg.Toggle("a", "b")
	if got := reg.MarkedIDs(); !reflect.DeepEqual(got, before) {
		t.Fatalf("double toggle should be identity: before=%v after=%v", before, got)
	}
}

func TestClearMarks(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{item("a", registry.ReadinessNotReady)})
	reg.Mark("a")
	reg.ClearMarks()
	if got := reg.MarkedIDs(); len(got) != 0 {
		t.Fatalf("expected empty marked set, got %v", got)
	}
}

func TestSetStatusOverwritesUnconditionally(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{item("a", registry.ReadinessReady)})

	reg.SetStatus("a", registry.StatusFailed)
	if got := reg.Status("a"); got != registry.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
	reg.SetStatus("a", registry.StatusBaked)
	if got := reg.Status("a"); got != registry.StatusBaked {
		t.Fatalf("expected baked, got %s", got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	reg := registry.New()
	reg.Refresh([]registry.WorkItem{item("a", registry.ReadinessNotReady)})
	reg.Mark("a")

	snap := reg.Snapshot()
	reg.ClearMarks()
	reg.SetStatus("a", registry.StatusBaked)

	if !snap.IsMarked("a") {
		t.Fatal("snapshot should keep the mark taken at capture time")
	}
	if got := snap.Status("a"); got != registry.StatusPending {
		t.Fatalf("snapshot status should be frozen, got %s", got)
	}
	if got := snap.Status("never-seen"); got != registry.StatusPending {
		t.Fatalf("unknown id should default pending, got %s", got)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := registry.ParseStatus(" Baked "); !ok || status != registry.StatusBaked {
		t.Fatalf("ParseStatus failed: %s %v", status, ok)
	}
	if _, ok := registry.ParseStatus("melted"); ok {
		t.Fatal("expected unknown status to fail parse")
	}
}

func TestParseReadiness(t *testing.T) {
	cases := map[string]registry.Readiness{
		"ready":   registry.ReadinessReady,
		"1":       registry.ReadinessReady,
		"false":   registry.ReadinessNotReady,
		"":        registry.ReadinessUnknown,
		"garbled": registry.ReadinessUnknown,
	}
	for in, want := range cases {
		if got := registry.ParseReadiness(in); got != want {
			t.Fatalf("ParseReadiness(%q) = %s, want %s", in, got, want)
		}
	}
}
