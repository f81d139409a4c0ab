// Package enrich asynchronously requests avatar and server-icon lookups
// from per-application bridges and patches stored entries when results
// arrive.
package enrich

import (
	"context"
	"log"

	"github.com/lookout-hud/lookout/internal/bridge"
	"github.com/lookout-hud/lookout/internal/ratelimit"
	"github.com/lookout-hud/lookout/internal/store"
)

// Dispatcher runs enrichment requests off the primary context. Completions
// rejoin only to patch a specific entry by id; if the entry has since been
// removed the patch is a silent no-op.
type Dispatcher struct {
	registry *bridge.Registry
	store    *store.Store
	bucket   *ratelimit.LeakyBucket

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Dispatcher. rpm bounds bridge calls per minute; rpm <= 0
// disables pacing.
func New(registry *bridge.Registry, s *store.Store, rpm int) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		registry: registry,
		store:    s,
		bucket:   ratelimit.NewLeakyBucketFromRPM(rpm),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enrich schedules avatar (and, for entries with a guild, server icon)
// lookups for a stored entry. Never blocks the caller.
func (d *Dispatcher) Enrich(entry *store.Entry) {
	enricher, ok := d.registry.Enricher(entry.AppBundleID)
	if !ok {
		return
	}

	if entry.ProfilePicture == nil {
		go d.fetchProfilePicture(enricher, entry)
	}
	if entry.GuildID != "" && entry.ServerIcon == nil {
		if gp, ok := enricher.(bridge.GuildIconProvider); ok {
			go d.fetchGuildIcon(gp, entry.ID, entry.GuildID)
		}
	}
}

// Close cancels all in-flight lookups.
func (d *Dispatcher) Close() {
	d.cancel()
	d.bucket.Close()
}

func (d *Dispatcher) fetchProfilePicture(e bridge.Enricher, entry *store.Entry) {
	if err := d.bucket.Wait(d.ctx); err != nil {
		return
	}

	candidates := candidateIDs(entry)
	if len(candidates) == 0 {
		return
	}

	img, err := e.ProfilePicture(d.ctx, candidates)
	if err != nil {
		// The entry keeps its existing (possibly absent) avatar.
		log.Printf("enrich: profile picture lookup for %s failed: %v", entry.AppBundleID, err)
		return
	}
	if img == nil {
		return
	}
	if !d.store.SetProfilePicture(entry.ID, img) {
		// Entry dismissed while the lookup was in flight.
		return
	}
}

func (d *Dispatcher) fetchGuildIcon(gp bridge.GuildIconProvider, entryID, guildID string) {
	if err := d.bucket.Wait(d.ctx); err != nil {
		return
	}

	img, err := gp.GuildIcon(d.ctx, guildID)
	if err != nil {
		log.Printf("enrich: guild icon lookup for %s failed: %v", guildID, err)
		return
	}
	if img == nil {
		return
	}
	d.store.SetServerIcon(entryID, img)
}

func candidateIDs(entry *store.Entry) []string {
	var ids []string
	if entry.SenderIdentifier != "" {
		ids = append(ids, entry.SenderIdentifier)
	}
	if entry.Sender != "" {
		ids = append(ids, entry.Sender)
	}
	return ids
}
