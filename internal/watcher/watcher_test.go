package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "db")
	if err := os.WriteFile(live, []byte("v1"), 0o644); err != nil {
		t.Fatalf("Failed to write live file: %v", err)
	}

	var fired atomic.Int32
	w := New(live, func() { fired.Add(1) })
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if !w.Accessible() {
		t.Error("Expected live file accessible")
	}

	if err := os.WriteFile(live, []byte("v2"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite live file: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("Expected change callback after write")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcher_MissingFileFlagsInaccessible(t *testing.T) {
	live := filepath.Join(t.TempDir(), "absent")

	w := New(live, func() {})
	if err := w.Start(); err != nil {
		t.Fatalf("Start must not fail for missing file: %v", err)
	}
	defer w.Stop()

	if w.Accessible() {
		t.Error("Expected inaccessible flag for missing file")
	}
}

func TestWatcher_CheckAccessDetectsChange(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "db")

	w := New(live, func() {})

	accessible, _ := w.CheckAccess()
	if accessible {
		t.Fatal("Expected inaccessible before file exists")
	}

	if err := os.WriteFile(live, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create live file: %v", err)
	}

	accessible, changed := w.CheckAccess()
	if !accessible || !changed {
		t.Errorf("Expected accessible+changed after create, got %v/%v", accessible, changed)
	}

	_, changed = w.CheckAccess()
	if changed {
		t.Error("Expected no change on repeated check")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "db")
	if err := os.WriteFile(live, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write live file: %v", err)
	}

	w := New(live, func() {})
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	w.Stop()
	w.Stop() // second stop must not panic or block
}
