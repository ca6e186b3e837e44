package jukebox

import (
	"sync"
	"time"
)

// requesterCooldowns tracks when each device last had a request
// accepted, per venue. Entries are checked lazily on every enqueue and
// swept periodically so the table cannot grow without bound on busy
// nights.
type requesterCooldowns struct {
	mu      sync.Mutex
	window  time.Duration
	clock   Clock
	byVenue map[string]map[string]time.Time
}

func newRequesterCooldowns(window time.Duration, clock Clock) *requesterCooldowns {
	return &requesterCooldowns{
		window:  window,
		clock:   clock,
		byVenue: make(map[string]map[string]time.Time),
	}
}

// remaining reports how much of the cooldown window is left for this
// device at this venue. Zero means the device may order again.
func (r *requesterCooldowns) remaining(venueID, deviceID string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	devices, ok := r.byVenue[venueID]
	if !ok {
		return 0
	}
	last, ok := devices[deviceID]
	if !ok {
		return 0
	}

	elapsed := r.clock.Now().Sub(last)
	if elapsed >= r.window {
		return 0
	}
	return r.window - elapsed
}

// mark records an accepted request for the device.
func (r *requesterCooldowns) mark(venueID, deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byVenue[venueID] == nil {
		r.byVenue[venueID] = make(map[string]time.Time)
	}
	r.byVenue[venueID][deviceID] = r.clock.Now()
}

// sweep drops entries older than the window. Empty venue maps are
// removed too, so venues that emptied out stop costing memory.
func (r *requesterCooldowns) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for venueID, devices := range r.byVenue {
		for deviceID, last := range devices {
			if now.Sub(last) > r.window {
				delete(devices, deviceID)
			}
		}
		if len(devices) == 0 {
			delete(r.byVenue, venueID)
		}
	}
}
