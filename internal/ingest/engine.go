package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lookout-hud/lookout/internal/bridge"
	"github.com/lookout-hud/lookout/internal/enrich"
	"github.com/lookout-hud/lookout/internal/media"
	"github.com/lookout-hud/lookout/internal/notifdb"
	"github.com/lookout-hud/lookout/internal/payload"
	"github.com/lookout-hud/lookout/internal/store"
	"github.com/lookout-hud/lookout/internal/watcher"
)

// Presenter is the external presentation layer. ShowNotification is a
// pass-through signal; the display duration is estimated from body length.
type Presenter interface {
	ShowNotification(entry *store.Entry, displayFor time.Duration, autoExpand bool)
}

// Options configures an Engine.
type Options struct {
	LivePath    string
	SnapshotDir string
	Store       *store.Store
	Registry    *bridge.Registry
	Presenter   Presenter

	// AutoExpand is the user preference forwarded with each show signal.
	AutoExpand bool

	// EnrichRPM bounds enrichment bridge calls per minute (<= 0: unpaced).
	EnrichRPM int
}

// PassResult contains statistics from one check pass.
type PassResult struct {
	RowsRead      int           `json:"rows_read"`
	Stored        int           `json:"stored"`
	Suppressed    int           `json:"suppressed"`
	DecodeErrors  int           `json:"decode_errors"`
	Accessible    bool          `json:"accessible"`
	AccessChanged bool          `json:"access_changed"`
	Duration      time.Duration `json:"duration"`
}

// Engine owns the cursor, the store and the decode pipeline. All mutations
// happen on its run loop goroutine; watcher events and manual triggers
// coalesce onto a single-slot channel.
type Engine struct {
	opts    Options
	snap    *notifdb.Snapshotter
	cursor  *Cursor
	watcher *watcher.Watcher
	enrich  *enrich.Dispatcher

	trigger chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
}

// NewEngine creates an Engine. The snapshot scratch directory is created if
// missing.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Store == nil {
		opts.Store = store.New(0)
	}
	if opts.Registry == nil {
		opts.Registry = bridge.NewRegistry()
	}

	snap, err := notifdb.NewSnapshotter(opts.LivePath, opts.SnapshotDir)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:    opts,
		snap:    snap,
		cursor:  NewCursor(),
		enrich:  enrich.New(opts.Registry, opts.Store, opts.EnrichRPM),
		trigger: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	e.watcher = watcher.New(opts.LivePath, e.Trigger)
	return e, nil
}

// Store returns the engine's notification store.
func (e *Engine) Store() *store.Store {
	return e.opts.Store
}

// SetCursor replaces the watermark cursor. Must be called before Start.
func (e *Engine) SetCursor(c *Cursor) {
	e.cursor = c
}

// Start begins watching the live database and launches the run loop. An
// initial pass is triggered immediately to pick up the lookback window.
func (e *Engine) Start() error {
	if err := e.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start change watcher: %w", err)
	}
	go e.run()
	e.Trigger()
	return nil
}

// Stop cancels the watcher, stops the run loop and in-flight enrichment,
// and removes the snapshot files.
func (e *Engine) Stop() {
	e.watcher.Stop()
	close(e.stopCh)
	<-e.done
	e.enrich.Close()
	e.snap.Clean()
}

// Trigger requests a check pass. Multiple rapid triggers coalesce; the pass
// is idempotent so redundant invocations are harmless.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Reply sends a typed reply for a stored entry through its app's bridge,
// fire-and-forget.
func (e *Engine) Reply(ctx context.Context, entryID, text string) {
	for _, entry := range e.opts.Store.Entries() {
		if entry.ID == entryID {
			e.opts.Registry.DispatchReply(ctx, entry.AppBundleID, entry.SenderIdentifier, text)
			return
		}
	}
	log.Printf("ingest: reply for unknown entry %s dropped", entryID)
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case <-e.stopCh:
			return
		case <-e.trigger:
			if _, err := e.CheckForChanges(); err != nil {
				// Absorbed: the pass retries on the next event.
				log.Printf("ingest: check pass failed: %v", err)
			}
		}
	}
}

// CheckForChanges runs one read pass: verify access, refresh the snapshot,
// stream rows past the watermark, decode and store them. Nothing below the
// pass level escalates; a failed pass leaves the watermark untouched.
func (e *Engine) CheckForChanges() (*PassResult, error) {
	start := time.Now()
	result := &PassResult{}

	accessible, changed := e.watcher.CheckAccess()
	result.Accessible = accessible
	result.AccessChanged = changed
	if changed {
		log.Printf("ingest: notification store accessible=%v", accessible)
	}
	if !accessible {
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := e.snap.Refresh(); err != nil {
		return result, fmt.Errorf("snapshot refresh: %w", err)
	}

	db, err := notifdb.Open(e.snap.SnapshotPath())
	if err != nil {
		return result, fmt.Errorf("open snapshot: %w", err)
	}
	defer db.Close()

	records, err := db.ReadSince(notifdb.UnixToMacTime(e.cursor.Last()))
	if err != nil {
		if errors.Is(err, notifdb.ErrSchemaUnrecognized) {
			// Abandon the pass with no state change.
			return result, err
		}
		return result, fmt.Errorf("read records: %w", err)
	}

	var maxSeen time.Time
	for _, rec := range records {
		result.RowsRead++

		ts := notifdb.MacTimeToUnix(rec.Timestamp)
		if ts.After(maxSeen) {
			maxSeen = ts
		}

		ev, err := payload.Decode(rec.AppID, rec.Payload)
		if err != nil {
			// Skip this record only; the rest of the pass proceeds.
			log.Printf("ingest: skipping record %s: %v", rec.UUID, err)
			result.DecodeErrors++
			continue
		}

		if ev.Body == "" {
			// No partial entries for body-less records.
			result.Suppressed++
			continue
		}

		entry := buildEntry(rec.UUID, ts, ev)
		e.opts.Store.InsertFront(entry)
		result.Stored++

		e.enrich.Enrich(entry)
		if e.opts.Presenter != nil {
			e.opts.Presenter.ShowNotification(entry, DisplayDuration(entry.Content), e.opts.AutoExpand)
		}
	}

	if result.RowsRead > 0 {
		e.cursor.Advance(maxSeen)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// buildEntry turns a decoded event into a stored entry, running the media
// searches and the media-label content filter.
func buildEntry(id string, ts time.Time, ev *payload.Event) *store.Entry {
	extracted := media.Extract(ev.Root, ev.Body)

	entry := &store.Entry{
		ID:               id,
		AppBundleID:      ev.AppID,
		Sender:           ev.Sender,
		Content:          payload.BlankMediaLabel(ev.Body),
		Timestamp:        ts,
		IsGroup:          ev.IsGroup,
		GroupName:        ev.GroupName,
		SenderIdentifier: ev.SenderIdentifier,
		ProfilePicture:   extracted.ProfilePicture,
		StickerImage:     extracted.Sticker,
		AttachmentImage:  extracted.Attachment,
		AudioPath:        extracted.AudioPath,
		ChannelName:      ev.ChannelName,
		GuildID:          ev.GuildID,
	}

	if ev.AppID == payload.BundleDiscord && ev.IsGroup {
		// The gamer-chat subtitle labels the guild, not a plain group.
		entry.ServerName = ev.GroupName
	}

	return entry
}

// DisplayDuration estimates how long the presentation layer should keep the
// notification on screen, from body length.
func DisplayDuration(content string) time.Duration {
	seconds := float64(len(content))*8.5/25 + 22.0/25 + 2
	if seconds < 8 {
		seconds = 8
	}
	return time.Duration(seconds * float64(time.Second))
}
