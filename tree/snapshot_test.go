package tree

import (
	"testing"
)

func TestSnapshotClone(t *testing.T) {
	orig := Snapshot{
		"title": "hello",
		"tags":  []any{"a", "b"},
		"meta":  map[string]any{"k": 1},
	}

	clone := orig.Clone()

	clone["title"] = "changed"
	clone["tags"].([]any)[0] = "mutated"
	clone["meta"].(map[string]any)["k"] = 2

	if orig["title"] != "hello" {
		t.Error("clone shares top-level values")
	}
	if orig["tags"].([]any)[0] != "a" {
		t.Error("clone shares nested slices")
	}
	if orig["meta"].(map[string]any)["k"] != 1 {
		t.Error("clone shares nested maps")
	}
}

func TestSnapshotCloneNil(t *testing.T) {
	var s Snapshot
	clone := s.Clone()
	if clone == nil {
		t.Fatal("Clone of nil snapshot should be an empty snapshot")
	}
	if len(clone) != 0 {
		t.Errorf("expected empty snapshot, got %v", clone)
	}
}

func TestDiffSnapshots(t *testing.T) {
	before := Snapshot{"title": "old", "count": 10, "gone": true}
	after := Snapshot{"title": "new", "count": 10, "added": "x"}

	changes := diffSnapshots(before, after)

	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %v", len(changes), changes)
	}

	// Changes are ordered by field name.
	if changes[0].Field != "added" || changes[1].Field != "gone" || changes[2].Field != "title" {
		t.Errorf("unexpected change order: %v", changes)
	}
	if changes[2].OldValue != "old" || changes[2].NewValue != "new" {
		t.Errorf("title change = %+v", changes[2])
	}
	if changes[1].NewValue != nil {
		t.Errorf("removed field should have nil new value, got %v", changes[1].NewValue)
	}
}

func TestDiffSnapshotsNoChanges(t *testing.T) {
	s := Snapshot{"a": 1, "b": []any{"x"}}
	if changes := diffSnapshots(s, s.Clone()); len(changes) != 0 {
		t.Errorf("expected no changes, got %v", changes)
	}
}
