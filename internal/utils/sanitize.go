package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// CleanFilename turns an uploaded filename into a text search term.
// e.g. "Daft_Punk-One_More_Time.flac" -> "Daft Punk One More Time"
func CleanFilename(filename string) string {
	ext := filepath.Ext(filename)
	clean := strings.TrimSuffix(filename, ext)
	clean = strings.ReplaceAll(clean, "_", " ")
	clean = strings.ReplaceAll(clean, "-", " ")
	return strings.TrimSpace(clean)
}

// Sanitize strips anything unsafe for an object key, falling back to
// def when the result is empty.
func Sanitize(text, def string) string {
	if text == "" {
		return def
	}
	reg, _ := regexp.Compile(`[^a-zA-Z0-9\-\s]+`)
	clean := reg.ReplaceAllString(text, "")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
	if clean == "" {
		return def
	}
	return clean
}

// SanitizeYear extracts a 4-digit year from a date string like
// "1997-01-20T08:00:00Z". Returns zero when there is none.
func SanitizeYear(dateStr string) int {
	if len(dateStr) < 4 {
		return 0
	}
	year := dateStr[:4]
	if match, _ := regexp.MatchString(`^\d{4}$`, year); !match {
		return 0
	}
	n := 0
	for _, r := range year {
		n = n*10 + int(r-'0')
	}
	return n
}
