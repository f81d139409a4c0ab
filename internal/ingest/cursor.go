// Package ingest orchestrates the check pass: snapshot, incremental read,
// payload decode, media extraction, store insertion and enrichment dispatch.
package ingest

import "time"

// WatermarkEpsilon is added when advancing the cursor so exact-timestamp
// duplicates do not reappear on the next pass. A heuristic, not a hard
// bound: it assumes the store cannot produce two distinct genuine records
// within this interval. Tunable if the store's precision proves finer.
const WatermarkEpsilon = 100 * time.Microsecond

// startupLookback keeps very recent activity visible across restarts.
const startupLookback = 5 * time.Minute

// Cursor tracks the highest record timestamp already delivered. It is owned
// exclusively by the read pass and advances monotonically.
type Cursor struct {
	last time.Time
}

// NewCursor initializes the cursor to now minus the startup lookback.
func NewCursor() *Cursor {
	return &Cursor{last: time.Now().Add(-startupLookback)}
}

// NewCursorAt initializes the cursor to an explicit watermark. Used by tests
// and by the one-shot check command.
func NewCursorAt(t time.Time) *Cursor {
	return &Cursor{last: t}
}

// Last returns the current watermark (wall-clock).
func (c *Cursor) Last() time.Time {
	return c.last
}

// Advance moves the watermark to max(existing, maxSeen) + epsilon. Called
// only after a pass that read at least one row.
func (c *Cursor) Advance(maxSeen time.Time) {
	if maxSeen.After(c.last) {
		c.last = maxSeen
	}
	c.last = c.last.Add(WatermarkEpsilon)
}
