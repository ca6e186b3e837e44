package metadata

import (
	"os"

	"github.com/dhowden/tag"
)

// Meta holds everything the ingester knows about one audio file before
// it becomes a catalog document.
type Meta struct {
	Artist          string
	Title           string
	Album           string
	Genre           string
	Year            int
	DurationSeconds int
	CoverURL        string
}

// ReadLocal extracts embedded tags from the file. Missing tags are not
// an error; the iTunes lookup fills the gaps afterwards.
func ReadLocal(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	t, err := tag.ReadFrom(f)
	if err != nil {
		return Meta{}, err
	}

	return Meta{
		Artist: t.Artist(),
		Title:  t.Title(),
		Album:  t.Album(),
		Genre:  t.Genre(),
		Year:   t.Year(),
	}, nil
}
