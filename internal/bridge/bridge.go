// Package bridge defines the contracts for the external per-application
// collaborators: reply delivery and avatar/icon enrichment. The ingestion
// core never blocks on any of them.
package bridge

import (
	"context"
	"log"
	"sync"

	"github.com/lookout-hud/lookout/internal/media"
)

// ReplyBridge pushes a typed reply back into a messaging application. The
// routing id is opaque to the core (a channel id, a contact address, or a
// composed "guildID:channelID").
type ReplyBridge interface {
	SendReply(ctx context.Context, routingID, text string) error
}

// FileSender is optionally implemented by bridges that can attach a file.
type FileSender interface {
	SendFile(ctx context.Context, routingID, fileURL, text string) error
}

// Enricher looks up a profile picture for any of the candidate ids. The
// completion may arrive much later than the triggering notification.
type Enricher interface {
	ProfilePicture(ctx context.Context, candidateIDs []string) (*media.Image, error)
}

// GuildIconProvider is implemented by the gamer-chat enrichment bridge.
type GuildIconProvider interface {
	GuildIcon(ctx context.Context, guildID string) (*media.Image, error)
}

// Registry maps app bundle identifiers to their bridges.
type Registry struct {
	mu        sync.RWMutex
	replies   map[string]ReplyBridge
	enrichers map[string]Enricher
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		replies:   make(map[string]ReplyBridge),
		enrichers: make(map[string]Enricher),
	}
}

// RegisterReply installs the reply bridge for an app bundle id.
func (r *Registry) RegisterReply(appBundleID string, b ReplyBridge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies[appBundleID] = b
}

// RegisterEnricher installs the enrichment bridge for an app bundle id.
func (r *Registry) RegisterEnricher(appBundleID string, e Enricher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrichers[appBundleID] = e
}

// Enricher returns the enrichment bridge for an app, if registered.
func (r *Registry) Enricher(appBundleID string) (Enricher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enrichers[appBundleID]
	return e, ok
}

// DispatchReply sends a reply fire-and-forget. Failures are logged only; a
// missing bridge is logged and dropped.
func (r *Registry) DispatchReply(ctx context.Context, appBundleID, routingID, text string) {
	r.mu.RLock()
	b, ok := r.replies[appBundleID]
	r.mu.RUnlock()
	if !ok {
		log.Printf("bridge: no reply bridge for %s, dropping reply", appBundleID)
		return
	}

	go func() {
		if err := b.SendReply(ctx, routingID, text); err != nil {
			log.Printf("bridge: reply via %s failed: %v", appBundleID, err)
		}
	}()
}

// DispatchFile sends a file fire-and-forget when the app's bridge supports
// attachments; otherwise it falls back to a text-only reply.
func (r *Registry) DispatchFile(ctx context.Context, appBundleID, routingID, fileURL, text string) {
	r.mu.RLock()
	b, ok := r.replies[appBundleID]
	r.mu.RUnlock()
	if !ok {
		log.Printf("bridge: no reply bridge for %s, dropping file", appBundleID)
		return
	}

	fs, canSendFile := b.(FileSender)
	go func() {
		if canSendFile {
			if err := fs.SendFile(ctx, routingID, fileURL, text); err != nil {
				log.Printf("bridge: file via %s failed: %v", appBundleID, err)
			}
			return
		}
		if err := b.SendReply(ctx, routingID, text); err != nil {
			log.Printf("bridge: reply via %s failed: %v", appBundleID, err)
		}
	}()
}
