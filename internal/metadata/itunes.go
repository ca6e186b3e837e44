package metadata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhifarskiy/eatune/internal/utils"
)

// EnrichViaITunes fetches metadata from iTunes (Good for Artist/Title/
// Year, and the only free source of decent cover art).
func EnrichViaITunes(filename string) (Meta, error) {
	cleanName := utils.CleanFilename(filename)
	apiURL := "https://itunes.apple.com/search"

	u, _ := url.Parse(apiURL)
	q := u.Query()
	q.Set("term", cleanName)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(u.String())
	if err != nil {
		return Meta{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return Meta{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			ArtistName       string `json:"artistName"`
			TrackName        string `json:"trackName"`
			CollectionName   string `json:"collectionName"`
			PrimaryGenreName string `json:"primaryGenreName"`
			ReleaseDate      string `json:"releaseDate"`
			ArtworkURL100    string `json:"artworkUrl100"`
			TrackTimeMillis  int    `json:"trackTimeMillis"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Meta{}, err
	}

	if result.ResultCount == 0 {
		return Meta{}, fmt.Errorf("no results for '%s'", cleanName)
	}

	item := result.Results[0]

	return Meta{
		Artist:          item.ArtistName,
		Title:           item.TrackName,
		Album:           item.CollectionName,
		Genre:           item.PrimaryGenreName,
		Year:            utils.SanitizeYear(item.ReleaseDate),
		DurationSeconds: item.TrackTimeMillis / 1000,
		CoverURL:        upscaleArtwork(item.ArtworkURL100),
	}, nil
}

// upscaleArtwork swaps the 100x100 thumbnail URL iTunes returns for the
// 600x600 variant the same CDN serves.
func upscaleArtwork(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}
	return strings.Replace(artworkURL, "100x100", "600x600", 1)
}
