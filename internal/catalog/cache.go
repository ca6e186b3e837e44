package catalog

import (
	"crypto/rand"
	"math/big"

	"github.com/jhifarskiy/eatune/internal/models"
)

// Cache is the in-memory catalog every venue draws from. It is built
// once at startup and read-only afterwards, so venues share it freely.
type Cache struct {
	tracks []models.Track
	byID   map[string]int
}

func NewCache(tracks []models.Track) *Cache {
	c := &Cache{
		tracks: tracks,
		byID:   make(map[string]int, len(tracks)),
	}
	for i, t := range tracks {
		c.byID[t.ID] = i
	}
	return c
}

// Shuffle randomizes the catalog order so background fill does not play
// the same opening set after every restart. Call before the cache is
// shared with any venue.
func (c *Cache) Shuffle() {
	// Secure Fisher-Yates Shuffle
	n := len(c.tracks)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			break
		}
		j := int(jBig.Int64())
		c.tracks[i], c.tracks[j] = c.tracks[j], c.tracks[i]
	}
	for i, t := range c.tracks {
		c.byID[t.ID] = i
	}
}

// ByID returns the track for the given id, or false if it is not in the
// catalog.
func (c *Cache) ByID(id string) (models.Track, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Track{}, false
	}
	return c.tracks[i], true
}

// At returns the track at a catalog position. Index must be in range.
func (c *Cache) At(i int) models.Track {
	return c.tracks[i]
}

// All returns the full catalog slice. Callers must treat it as
// read-only.
func (c *Cache) All() []models.Track {
	return c.tracks
}

func (c *Cache) Len() int {
	return len(c.tracks)
}
