package models

import "fmt"

// Track is a single catalog entry. It is loaded once from MongoDB at
// startup and never mutated afterwards, so it is safe to share across
// venues without copying.
type Track struct {
	// Mongo ObjectID rendered as a hex string
	ID string `json:"id"`

	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Duration string `json:"duration"` // display string, e.g. "3:42"
	Genre    string `json:"genre"`
	Year     *int   `json:"year"`

	TrackURL string  `json:"trackUrl"`
	CoverURL *string `json:"coverUrl"`
}

// FormatDuration converts raw seconds into the "m:ss" display string
// the mobile clients expect.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
