package notifdb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// sidecarSuffixes are copied alongside the main database file. The WAL holds
// pages not yet checkpointed into the main file; the SHM index is cheap to
// carry and keeps the copy self-consistent.
var sidecarSuffixes = []string{"-wal", "-shm"}

// Snapshotter copies the live database and its sidecars into a scratch
// directory so a read pass never touches files the owning process may be
// rewriting or checkpointing.
type Snapshotter struct {
	livePath   string
	scratchDir string
}

// NewSnapshotter creates a Snapshotter for the given live database path.
// The scratch directory is created if missing.
func NewSnapshotter(livePath, scratchDir string) (*Snapshotter, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &Snapshotter{livePath: livePath, scratchDir: scratchDir}, nil
}

// SnapshotPath returns the path of the snapshot main database file.
func (s *Snapshotter) SnapshotPath() string {
	return filepath.Join(s.scratchDir, "snapshot.db")
}

// Refresh overwrites the snapshot with a fresh copy of the live database and
// its sidecars. A missing sidecar is not an error, but any stale copy of it
// from a prior pass is removed so the snapshot never mixes generations.
func (s *Snapshotter) Refresh() error {
	if err := copyFile(s.livePath, s.SnapshotPath()); err != nil {
		return fmt.Errorf("failed to copy live db: %w", err)
	}

	for _, suffix := range sidecarSuffixes {
		src := s.livePath + suffix
		dst := s.SnapshotPath() + suffix

		if _, err := os.Stat(src); os.IsNotExist(err) {
			_ = os.Remove(dst)
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to copy sidecar %s: %w", suffix, err)
		}
	}

	return nil
}

// Clean removes the snapshot files. Called on shutdown; the scratch dir is
// not persisted across restarts.
func (s *Snapshotter) Clean() {
	_ = os.Remove(s.SnapshotPath())
	for _, suffix := range sidecarSuffixes {
		_ = os.Remove(s.SnapshotPath() + suffix)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
