package reconcile_test

import (
	"reflect"
	"sort"
	"testing"
	"time"

	"gosynctasks/reconcile"
)

func sortedCopy(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	sort.Strings(out)
	return out
}

// Merge law (spec §4.4/§8): idempotent for a given (local, remote)
// pair — Merge(Merge(l, r), r) == Merge(l, r).
func TestMerge_Idempotent(t *testing.T) {
	local := reconcile.TaskProxy{Name: "Taxes", Notes: "filed", Priority: 2, Tags: []string{"Home"}}
	remote := reconcile.TaskProxy{Name: "Taxes", Notes: "filed 2024", Priority: 1, Tags: []string{"home", "Errands"}}

	once := reconcile.Merge(local, remote)
	twice := reconcile.Merge(once, remote)

	if !reflect.DeepEqual(sortedCopy(once.Tags), sortedCopy(twice.Tags)) || once.Notes != twice.Notes || once.Priority != twice.Priority {
		t.Fatalf("merge is not idempotent: once=%+v twice=%+v", once, twice)
	}
}

// Scenario 4 from spec §8: the longer non-empty notes value wins when
// no timestamps are available to compare.
func TestMerge_LongerNotesWin(t *testing.T) {
	local := reconcile.TaskProxy{Name: "Taxes", Notes: "filed"}
	remote := reconcile.TaskProxy{Name: "Taxes", Notes: "filed 2024"}

	merged := reconcile.Merge(local, remote)
	if merged.Notes != "filed 2024" {
		t.Errorf("Notes = %q, want the longer remote value %q", merged.Notes, "filed 2024")
	}
}

// Tag sets union case-insensitively, per spec §4.4.
func TestMerge_UnionsTagsCaseInsensitively(t *testing.T) {
	local := reconcile.TaskProxy{Tags: []string{"Home"}}
	remote := reconcile.TaskProxy{Tags: []string{"home", "Errands"}}

	merged := reconcile.Merge(local, remote)
	if len(merged.Tags) != 2 {
		t.Fatalf("expected 2 unioned tags, got %v", merged.Tags)
	}
}

// Completion and deletion flags: the "true" side always wins.
func TestMerge_TrueWinsForCompletionAndDeletion(t *testing.T) {
	completedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	local := reconcile.TaskProxy{Completed: &completedAt, IsDeleted: false}
	remote := reconcile.TaskProxy{Completed: nil, IsDeleted: true}

	merged := reconcile.Merge(local, remote)
	if merged.Completed == nil {
		t.Error("expected local's completion to win when remote has none")
	}
	if !merged.IsDeleted {
		t.Error("expected deletion to win when either side is deleted")
	}
}

// Merge never produces a value neither side had for a scalar field.
func TestMerge_NeverInventsAScalar(t *testing.T) {
	local := reconcile.TaskProxy{Priority: 3}
	remote := reconcile.TaskProxy{Priority: 5}

	merged := reconcile.Merge(local, remote)
	if merged.Priority != local.Priority && merged.Priority != remote.Priority {
		t.Errorf("Priority = %d, want either %d or %d", merged.Priority, local.Priority, remote.Priority)
	}
}
