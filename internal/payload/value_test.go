package payload

import (
	"sort"
	"testing"
)

func TestFindKey_Nested(t *testing.T) {
	tree := map[string]any{
		"a": map[string]any{
			"b": []any{
				map[string]any{"target": "found"},
			},
		},
	}

	v, ok := FindKey(tree, "target", nil)
	if !ok {
		t.Fatal("Expected target key to be found")
	}
	if v != "found" {
		t.Errorf("Expected %q, got %v", "found", v)
	}
}

func TestFindKey_BlockedSubtree(t *testing.T) {
	tree := map[string]any{
		"claimed": map[string]any{"target": "hidden"},
		"open":    map[string]any{"other": 1},
	}

	if _, ok := FindKey(tree, "target", NewBlockedKeys("claimed")); ok {
		t.Error("Expected blocked subtree to be pruned")
	}
}

func TestFindFirstKey_Priority(t *testing.T) {
	tree := map[string]any{
		"second": "lower",
		"first":  "higher",
	}

	v, ok := FindFirstKey(tree, []string{"first", "second"}, nil)
	if !ok || v != "higher" {
		t.Errorf("Expected priority key to win, got %v", v)
	}
}

func TestFindStringKey_SkipsEmpty(t *testing.T) {
	tree := map[string]any{
		"a": "   ",
		"b": "value",
	}

	if got := FindStringKey(tree, []string{"a", "b"}, nil); got != "value" {
		t.Errorf("Expected blank string skipped, got %q", got)
	}
}

func TestStrings_CollectsLeaves(t *testing.T) {
	tree := map[string]any{
		"a": "one",
		"b": []any{"two", 3, map[string]any{"c": "three"}},
		"d": []byte("not a string leaf"),
	}

	got := Strings(tree, nil)
	sort.Strings(got)
	want := []string{"one", "three", "two"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d strings, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestWalkValues_StopsEarly(t *testing.T) {
	tree := map[string]any{"a": "x", "b": "y"}

	visits := 0
	WalkValues(tree, nil, func(_ string, v any) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Errorf("Expected walk to stop after first visit, got %d", visits)
	}
}
