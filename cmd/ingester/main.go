package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/ingest"
	"github.com/jhifarskiy/eatune/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Catalog Ingestion Worker...")

	// 1. Setup Configuration
	cfg := config.Load()
	if cfg.B2.KeyID == "" {
		log.Fatal("Critical: B2 KeyID is missing (EATUNE_B2_KEY_ID)")
	}

	os.MkdirAll(cfg.Server.TempDir, 0755)

	// 2. Connect to the catalog store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := catalog.NewStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Catalog store unavailable: %v", err)
	}
	cancel()

	// 3. Storage
	st := storage.New(cfg)
	log.Println("✅ Connected to object storage")

	// 4. Setup Metrics
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 5. Run the watcher loop
	worker := ingest.NewWorker(cfg, st, store)
	worker.Run(context.Background())
}
