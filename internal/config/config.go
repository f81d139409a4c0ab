// Package config resolves application paths and user settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/lookout-hud/lookout/internal/notifdb"
	"github.com/lookout-hud/lookout/internal/store"
)

// Settings are the user-tunable knobs, read from settings.yaml in the app
// dir when present.
type Settings struct {
	// MaxEntries caps the notification store (0 = default).
	MaxEntries int `yaml:"max_entries"`

	// AutoExpand asks the presentation layer to expand new notifications.
	AutoExpand bool `yaml:"auto_expand"`

	// EnrichRPM bounds avatar/icon bridge calls per minute (0 = unpaced).
	EnrichRPM int `yaml:"enrich_rpm"`

	// LookbackMinutes sets how far behind now the watermark starts on
	// launch (0 = built-in default).
	LookbackMinutes int `yaml:"lookback_minutes"`
}

// Config holds the Lookout application configuration.
type Config struct {
	AppDir       string
	NotifDBPath  string
	SnapshotDir  string
	SettingsPath string
	Settings     Settings
}

// GetAppDir returns the Lookout application directory for the current OS.
func GetAppDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Lookout")
	case "linux":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "lookout")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Lookout")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".lookout")
	}
}

// Load returns a Config with env overrides, settings-file values and
// defaults applied, in that order of precedence.
func Load() *Config {
	appDir := GetAppDir()

	cfg := &Config{
		AppDir:       appDir,
		NotifDBPath:  notifdb.GetStorePath(),
		SnapshotDir:  getEnv("LOOKOUT_SNAPSHOT_DIR", filepath.Join(appDir, "snapshot")),
		SettingsPath: filepath.Join(appDir, "settings.yaml"),
		Settings: Settings{
			MaxEntries: store.DefaultMaxEntries,
		},
	}

	if err := loadSettings(cfg.SettingsPath, &cfg.Settings); err != nil {
		// Missing or malformed settings fall back to defaults.
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: ignoring settings file: %v\n", err)
		}
	}

	return cfg
}

func loadSettings(path string, out *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if out.MaxEntries <= 0 {
		out.MaxEntries = store.DefaultMaxEntries
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
