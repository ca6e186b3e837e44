package jukebox

import "github.com/prometheus/client_golang/prometheus"

var (
	enqueueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jukebox_enqueue_requests_total", Help: "Track requests by outcome"},
		[]string{"outcome"},
	)
	tracksPlayed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "jukebox_tracks_played_total", Help: "Tracks that finished playing"},
	)
	activeVenues = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "jukebox_active_venues", Help: "Venues with live in-memory state"},
	)
)

func init() {
	prometheus.MustRegister(enqueueTotal, tracksPlayed, activeVenues)
}
