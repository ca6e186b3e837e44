package jukebox

import (
	"sync"
	"time"

	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/models"
)

// venueState holds everything one venue owns: its queue, play history,
// track cooldowns and the round-robin cursor for background fill. Each
// venue has its own mutex so busy venues never block each other.
type venueState struct {
	id string
	mu sync.Mutex

	queue            []models.QueueEntry
	history          *historyLog
	trackCooldowns   map[string]time.Time
	backgroundCursor int
}

func newVenueState(id string, historyMax int) *venueState {
	return &venueState{
		id:             id,
		history:        newHistoryLog(historyMax),
		trackCooldowns: make(map[string]time.Time),
	}
}

// hasUserTracks reports whether any patron-requested entry is queued.
// Caller must hold v.mu.
func (v *venueState) hasUserTracks() bool {
	for _, e := range v.queue {
		if !e.IsBackgroundTrack {
			return true
		}
	}
	return false
}

// containsTrack reports whether any entry (background or not) carries
// the id. Caller must hold v.mu.
func (v *venueState) containsTrack(id string) bool {
	for _, e := range v.queue {
		if e.ID == id {
			return true
		}
	}
	return false
}

// trackCooldownRemaining returns how long until the track may be
// ordered again, or zero. Expired entries are removed on the spot.
// Caller must hold v.mu.
func (v *venueState) trackCooldownRemaining(id string, now time.Time) time.Duration {
	expiry, ok := v.trackCooldowns[id]
	if !ok {
		return 0
	}
	if !now.Before(expiry) {
		delete(v.trackCooldowns, id)
		return 0
	}
	return expiry.Sub(now)
}

// fillBackground tops the queue up with filler tracks. Patron requests
// take absolute precedence: if any user entry is queued, nothing is
// added. The walk resumes at backgroundCursor and wraps around the
// catalog; the safeguard counter stops it after one full cycle, which
// covers catalogs smaller than the target size or fully on cooldown.
// Caller must hold v.mu.
func (v *venueState) fillBackground(cache *catalog.Cache, now time.Time, target int) {
	if cache.Len() == 0 {
		return
	}
	if v.hasUserTracks() {
		return
	}

	toAdd := target - len(v.queue)
	if toAdd <= 0 {
		return
	}

	cursor := v.backgroundCursor
	safeguard := cache.Len()

	for toAdd > 0 && safeguard > 0 {
		next := cache.At(cursor)
		if !v.containsTrack(next.ID) && v.trackCooldownRemaining(next.ID, now) == 0 {
			v.queue = append(v.queue, models.QueueEntry{Track: next, IsBackgroundTrack: true})
			toAdd--
		}
		cursor = (cursor + 1) % cache.Len()
		safeguard--
	}
	v.backgroundCursor = cursor
}

// snapshot returns a copy of the queue safe to hand to subscribers.
// Caller must hold v.mu.
func (v *venueState) snapshot() []models.QueueEntry {
	out := make([]models.QueueEntry, len(v.queue))
	copy(out, v.queue)
	return out
}
