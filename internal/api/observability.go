package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-connection labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.016, 0.05},
	})

	broadcastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_broadcast_duration_seconds",
		Help:    "Time spent fanning one snapshot out to all sessions",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.025, 0.1, 0.25},
	})

	slotsOccupied = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_slots_occupied",
		Help: "Player slots currently seated",
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_enemy_count",
		Help: "Live enemies in the simulation",
	})

	bulletCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_bullet_count",
		Help: "Live bullets in the simulation",
	})

	powerupCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_powerup_count",
		Help: "Live power-ups in the simulation",
	})

	// reason is bounded: "server_full", "rate_limit", "origin", "ws_ip_limit", "ws_total_limit"
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by slot cap, rate limiter or origin check",
	}, []string{"reason"})

	spectatorsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spectator_connections_active",
		Help: "Currently connected spectator WebSockets",
	})

	spectatorMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spectator_messages_total",
		Help: "Snapshots pushed to spectators",
	})
)

// RecordTick records one simulation step's duration.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordBroadcast records one snapshot fan-out's duration.
func RecordBroadcast(d time.Duration) {
	broadcastDuration.Observe(d.Seconds())
}

// UpdateSlots sets the seated-slot gauge.
func UpdateSlots(count int) {
	slotsOccupied.Set(float64(count))
}

// UpdateEntityCounts sets the live-entity gauges.
func UpdateEntityCounts(enemies, bullets, powerups int) {
	enemyCount.Set(float64(enemies))
	bulletCount.Set(float64(bullets))
	powerupCount.Set(float64(powerups))
}

// RecordConnectionRejected increments the rejection counter for a bounded
// reason label.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

func updateSpectators(count int) {
	spectatorsActive.Set(float64(count))
}

func incrementSpectatorMessages() {
	spectatorMessages.Inc()
}

// ObservabilityConfig configures the internal debug server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // must stay on localhost in production
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer starts the pprof/metrics server. It binds to localhost
// only unless ALLOW_DEBUG_EXTERNAL=true is set explicitly.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("📊 debug server on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ debug server error: %v", err)
		}
	}()
	return nil
}
