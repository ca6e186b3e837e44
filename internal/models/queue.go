package models

// QueueEntry is a Track sitting in a venue's queue. The entry at index 0
// is "now playing"; everything after it is upcoming.
type QueueEntry struct {
	Track

	// IsBackgroundTrack marks filler chosen by the engine rather than a
	// patron. Background entries never carry a requester.
	IsBackgroundTrack bool `json:"isBackgroundTrack"`

	// RequestedBy is the opaque device id of the patron who ordered the
	// track ("admin" for staff inserts). Empty for background entries.
	RequestedBy string `json:"requestedBy,omitempty"`
}
