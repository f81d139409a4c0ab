package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lookout-hud/lookout/internal/store"
)

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "max_entries: 25\nauto_expand: true\nenrich_rpm: 12\nlookback_minutes: 30\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	var s Settings
	if err := loadSettings(path, &s); err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if s.MaxEntries != 25 || !s.AutoExpand || s.EnrichRPM != 12 || s.LookbackMinutes != 30 {
		t.Errorf("Expected parsed settings, got %+v", s)
	}
}

func TestLoadSettings_InvalidMaxEntriesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("max_entries: -3\n"), 0o644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	var s Settings
	if err := loadSettings(path, &s); err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if s.MaxEntries != store.DefaultMaxEntries {
		t.Errorf("Expected default cap, got %d", s.MaxEntries)
	}
}

func TestLoadSettings_Missing(t *testing.T) {
	var s Settings
	err := loadSettings(filepath.Join(t.TempDir(), "absent.yaml"), &s)
	if !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("max_entries: [not an int\n"), 0o644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	var s Settings
	if err := loadSettings(path, &s); err == nil {
		t.Error("Expected parse error for malformed yaml")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LOOKOUT_SNAPSHOT_DIR", "/tmp/custom-snap")

	cfg := Load()
	if cfg.SnapshotDir != "/tmp/custom-snap" {
		t.Errorf("Expected env override for snapshot dir, got %q", cfg.SnapshotDir)
	}
	if cfg.Settings.MaxEntries <= 0 {
		t.Errorf("Expected positive max entries, got %d", cfg.Settings.MaxEntries)
	}
}
