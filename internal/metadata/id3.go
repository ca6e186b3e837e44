package metadata

import (
	"strconv"

	"github.com/bogem/id3v2"
)

// WriteID3 rewrites the file's ID3 frames with the final merged
// metadata, so what the catalog says always matches what the file says.
// Only meaningful for mp3; other formats are uploaded as-is.
func WriteID3(path string, meta Meta) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetArtist(meta.Artist)
	tag.SetTitle(meta.Title)
	tag.SetAlbum(meta.Album)
	tag.SetGenre(meta.Genre)
	if meta.Year > 0 {
		tag.SetYear(strconv.Itoa(meta.Year))
	}

	return tag.Save()
}
