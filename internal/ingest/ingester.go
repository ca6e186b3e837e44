package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/metadata"
	"github.com/jhifarskiy/eatune/internal/models"
	"github.com/jhifarskiy/eatune/internal/storage"
	"github.com/jhifarskiy/eatune/internal/utils"
)

var (
	ingestJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_ingest_jobs_total",
			Help: "Total number of files processed by the ingester",
		},
		[]string{"status"},
	)
	ingestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jukebox_ingest_duration_seconds",
			Help:    "Time taken to process a single track",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(ingestJobs, ingestDuration)
}

// Worker watches the ingest bucket and turns raw audio uploads into
// catalog documents: tags are read and enriched, the file moves to the
// prod bucket, and a track document is upserted into MongoDB.
type Worker struct {
	cfg     *config.Config
	storage *storage.Client
	store   *catalog.Store
}

func NewWorker(cfg *config.Config, st *storage.Client, store *catalog.Store) *Worker {
	return &Worker{cfg: cfg, storage: st, store: store}
}

// Run polls the ingest bucket until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(w.cfg.Ingester.PollingInterval) * time.Second)
	defer ticker.Stop()

	log.Printf("Watcher started on '%s'.", w.cfg.B2.BucketIngest)

	w.ProcessQueue(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessQueue(ctx)
		}
	}
}

// ProcessQueue handles every pending upload once.
func (w *Worker) ProcessQueue(ctx context.Context) {
	keys, err := w.storage.ListIngest()
	if err != nil {
		log.Printf("Error listing ingest bucket: %v", err)
		return
	}

	if len(keys) == 0 {
		return
	}

	log.Printf("Found %d items in ingest queue.", len(keys))

	for _, key := range keys {
		if strings.HasSuffix(key, "/") || !isSupportedFormat(strings.ToLower(key)) {
			continue
		}

		log.Printf("Processing: %s", key)
		if err := w.processSingleFile(ctx, key); err != nil {
			log.Printf("❌ FAILED %s: %v", key, err)
			ingestJobs.WithLabelValues("failure").Inc()
		} else {
			log.Printf("✅ CATALOGED %s", key)
			ingestJobs.WithLabelValues("success").Inc()
		}
	}
}

func isSupportedFormat(filename string) bool {
	extensions := []string{
		".mp3", ".flac", ".wav", ".ogg", ".m4a", ".aac", ".opus",
	}
	for _, ext := range extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

func (w *Worker) processSingleFile(ctx context.Context, key string) error {
	timer := prometheus.NewTimer(ingestDuration)
	defer timer.ObserveDuration()

	baseName := filepath.Base(key)
	localPath := filepath.Join(w.cfg.Server.TempDir, "ingest_"+baseName)
	defer os.Remove(localPath)

	// 1. Download
	if err := w.download(key, localPath); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	// 2. Extract Local Metadata
	meta, err := metadata.ReadLocal(localPath)
	if err != nil {
		log.Printf("Warning: Could not read local metadata for %s: %v", key, err)
	}

	// 3. ENRICHMENT: iTunes fills missing tags and supplies cover art
	if meta.Artist == "" || meta.Title == "" || meta.CoverURL == "" {
		enriched, err := metadata.EnrichViaITunes(baseName)
		if err != nil {
			log.Printf("   ⚠️ iTunes lookup failed: %v", err)
		} else {
			meta = merge(meta, enriched)
			log.Printf("   ✨ Enriched: %s - %s (%d)", meta.Artist, meta.Title, meta.Year)
		}
	}

	// 4. Duration via ffprobe; the iTunes estimate stays as fallback
	if secs, err := probeDuration(localPath); err == nil {
		meta.DurationSeconds = secs
	}

	// 5. Normalize ID3 frames so file tags match the catalog
	if strings.HasSuffix(strings.ToLower(localPath), ".mp3") {
		if err := metadata.WriteID3(localPath, meta); err != nil {
			log.Printf("   ⚠️ ID3 rewrite failed: %v", err)
		}
	}

	// 6. Upload to prod under a stable, readable key
	destKey := buildDestinationKey(meta, key)
	if err := w.upload(destKey, localPath); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	// 7. Upsert the catalog document
	track := models.Track{
		Title:    meta.Title,
		Artist:   meta.Artist,
		Duration: models.FormatDuration(meta.DurationSeconds),
		Genre:    meta.Genre,
		TrackURL: w.storage.PublicURL(destKey),
	}
	if meta.Year > 0 {
		year := meta.Year
		track.Year = &year
	}
	if meta.CoverURL != "" {
		cover := meta.CoverURL
		track.CoverURL = &cover
	}

	if err := w.store.UpsertByURL(ctx, track); err != nil {
		return fmt.Errorf("catalog upsert failed: %w", err)
	}

	// 8. Delete Original
	return w.storage.DeleteIngest(key)
}

func merge(local, enriched metadata.Meta) metadata.Meta {
	if local.Artist == "" {
		local.Artist = enriched.Artist
	}
	if local.Title == "" {
		local.Title = enriched.Title
	}
	if local.Album == "" {
		local.Album = enriched.Album
	}
	if local.Genre == "" {
		local.Genre = enriched.Genre
	}
	if local.Year == 0 {
		local.Year = enriched.Year
	}
	if local.DurationSeconds == 0 {
		local.DurationSeconds = enriched.DurationSeconds
	}
	if local.CoverURL == "" {
		local.CoverURL = enriched.CoverURL
	}
	return local
}

// buildDestinationKey yields "music/Artist_-_Title.mp3", falling back
// to the original filename when tags are hopeless.
func buildDestinationKey(meta metadata.Meta, originalKey string) string {
	ext := filepath.Ext(originalKey)
	artist := utils.Sanitize(meta.Artist, "")
	title := utils.Sanitize(meta.Title, "")
	if artist == "" || title == "" {
		return "music/" + filepath.Base(originalKey)
	}
	return "music/" + artist + "_-_" + title + ext
}

func probeDuration(path string) (int, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, err
	}
	return int(secs + 0.5), nil
}

func (w *Worker) download(key, dest string) error {
	obj, err := w.storage.DownloadIngest(key)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, obj.Body)
	return err
}

func (w *Worker) upload(key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return w.storage.UploadProd(key, f, contentType(key))
}

func contentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".m4a", ".aac":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
