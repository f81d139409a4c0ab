// Package store holds the bounded, ordered collection of decoded
// notification entries and the cursor the UI navigates with.
package store

import (
	"sync"
	"time"

	"github.com/lookout-hud/lookout/internal/media"
)

// DefaultMaxEntries is the retained-entry cap when none is configured.
const DefaultMaxEntries = 50

// Entry is one decoded notification. ID is immutable and unique within the
// store; ProfilePicture and ServerIcon may be patched later by enrichment.
type Entry struct {
	ID          string
	AppBundleID string
	Sender      string
	Content     string
	Timestamp   time.Time

	IsGroup   bool
	GroupName string

	// SenderIdentifier is an opaque routing id for replies; for the
	// gamer-chat format it may encode "guildID:channelID".
	SenderIdentifier string

	ProfilePicture  *media.Image
	StickerImage    *media.Image
	AttachmentImage *media.Image
	AudioPath       string

	// Gamer-chat extras.
	ServerIcon  *media.Image
	ServerName  string
	ChannelName string
	GuildID     string
}

// Store is an ordered, bounded entry list with a current-index cursor.
// Mutations keep the invariant 0 <= current < len, or len == 0. The mutex
// exists only for the by-id enrichment patches, which rejoin from other
// goroutines.
type Store struct {
	mu      sync.Mutex
	entries []*Entry
	current int
	max     int
}

// New creates a Store with the given capacity (<= 0 means DefaultMaxEntries).
func New(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{max: maxEntries}
}

// InsertFront prepends entry and evicts the oldest entries beyond the cap.
// The cursor moves to the new entry.
func (s *Store) InsertFront(entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]*Entry{entry}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
	s.current = 0
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Current returns the entry under the cursor, or nil when the store is empty.
func (s *Store) Current() *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[s.current]
}

// Entries returns a snapshot of the retained entries, newest first.
func (s *Store) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// RemoveCurrent removes the entry under the cursor and clamps the cursor.
func (s *Store) RemoveCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return
	}
	s.entries = append(s.entries[:s.current], s.entries[s.current+1:]...)
	s.clampLocked()
}

// RemoveByID removes the entry with the given id, if present.
func (s *Store) RemoveByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.clampLocked()
			return
		}
	}
}

// RemoveThread removes every entry matching (appBundleID, sender, groupName)
// and clamps the cursor into range.
func (s *Store) RemoveThread(appBundleID, sender, groupName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.AppBundleID == appBundleID && e.Sender == sender && e.GroupName == groupName {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	s.clampLocked()
	return removed
}

// Advance moves the cursor toward older entries, clamping at the end.
func (s *Store) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.entries)-1 {
		s.current++
	}
}

// Retreat moves the cursor toward newer entries, clamping at the front.
func (s *Store) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
}

// CurrentIndex returns the cursor position.
func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetProfilePicture patches the entry with the given id in place. A removed
// id is a silent no-op: stale enrichment results must be discarded.
func (s *Store) SetProfilePicture(id string, img *media.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			e.ProfilePicture = img
			return true
		}
	}
	return false
}

// SetServerIcon patches the gamer-chat server icon by entry id. Silent no-op
// when the entry has been removed.
func (s *Store) SetServerIcon(id string, img *media.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			e.ServerIcon = img
			return true
		}
	}
	return false
}

func (s *Store) clampLocked() {
	if len(s.entries) == 0 {
		s.current = 0
		return
	}
	if s.current >= len(s.entries) {
		s.current = len(s.entries) - 1
	}
	if s.current < 0 {
		s.current = 0
	}
}
