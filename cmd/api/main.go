package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhifarskiy/eatune/internal/api"
	"github.com/jhifarskiy/eatune/internal/catalog"
	"github.com/jhifarskiy/eatune/internal/config"
	"github.com/jhifarskiy/eatune/internal/jukebox"
	"github.com/jhifarskiy/eatune/internal/ws"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Eatune Jukebox Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Connect to the catalog store and load the catalog.
	// Without a catalog no venue can be served, so any failure here
	// aborts startup.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := catalog.NewStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Catalog store unavailable: %v", err)
	}

	tracks, err := store.LoadAll(ctx)
	if err != nil {
		log.Fatalf("❌ Initial catalog load failed: %v", err)
	}
	cancel()

	cache := catalog.NewCache(tracks)
	if cfg.Jukebox.ShuffleCatalog {
		cache.Shuffle()
	}
	log.Printf("✅ Loaded %d tracks into memory.", cache.Len())

	// 3. Queue engine + fanout hub
	hub := ws.NewHub()
	svc := jukebox.New(cache, hub, jukebox.OptionsFromConfig(cfg))
	svc.StartSweeper(context.Background())

	// 4. Setup Metrics
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 5. Start Server
	srv := api.New(cfg, svc, hub, cache)

	log.Printf("🚀 Jukebox server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
