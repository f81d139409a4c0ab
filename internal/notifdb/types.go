// Package notifdb provides read-only access to the macOS Notification Center
// store (db2/db) via a snapshot copy, plus incremental record reads gated on a
// timestamp watermark.
package notifdb

import (
	"os"
	"path/filepath"
	"time"
)

// RawRecord is one row from the record table, ready for payload decoding.
type RawRecord struct {
	UUID      string
	AppID     string  // bundle identifier, or the raw app rowid when unmapped
	Payload   []byte  // opaque plist blob
	Timestamp float64 // seconds since the Mac epoch
}

// timestampColumns are probed in priority order; the schema varies by OS
// version and only one of these exists on a given install.
var timestampColumns = []string{"delivered_date", "date", "presented_date"}

// MacEpoch is the reference point for store timestamps (2001-01-01 00:00:00 UTC).
var MacEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// MacTimeToUnix converts float seconds since the Mac epoch to wall-clock time.
func MacTimeToUnix(sec float64) time.Time {
	return MacEpoch.Add(time.Duration(sec * float64(time.Second)))
}

// UnixToMacTime converts wall-clock time to float seconds since the Mac epoch.
func UnixToMacTime(t time.Time) float64 {
	return t.Sub(MacEpoch).Seconds()
}

// GetStorePath returns the path to the live Notification Center database.
func GetStorePath() string {
	// Check for env override first
	if override := os.Getenv("LOOKOUT_SOURCE_NOTIF_DB"); override != "" {
		return os.ExpandEnv(override)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Group Containers", "group.com.apple.usernoted", "db2", "db")
}
