package jukebox

import "github.com/jhifarskiy/eatune/internal/models"

// historyLog is a bounded, most-recent-first log of finished entries.
// It backs the "previous track" button and the history screen in the
// mobile app. Not safe for concurrent use; the owning venue's lock
// serializes access.
type historyLog struct {
	max     int
	entries []models.QueueEntry
}

func newHistoryLog(max int) *historyLog {
	return &historyLog{max: max}
}

// push prepends a finished entry, evicting the oldest one once the log
// is over capacity.
func (h *historyLog) push(e models.QueueEntry) {
	h.entries = append([]models.QueueEntry{e}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// pop removes and returns the most recently finished entry.
func (h *historyLog) pop() (models.QueueEntry, bool) {
	if len(h.entries) == 0 {
		return models.QueueEntry{}, false
	}
	e := h.entries[0]
	h.entries = h.entries[1:]
	return e, true
}

// list returns a copy, newest first.
func (h *historyLog) list() []models.QueueEntry {
	out := make([]models.QueueEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *historyLog) len() int {
	return len(h.entries)
}
