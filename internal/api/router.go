package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"space-defender/internal/protocol"
)

// SnapshotSource is the read side of the engine's snapshot buffer. The API
// layer never touches live simulation state; it only sees published
// snapshots. The interface keeps handlers mockable in tests.
type SnapshotSource interface {
	// Latest returns the most recently published snapshot; false before
	// the first publish.
	Latest() (protocol.Snapshot, bool)
	// Sequence returns the monotonic publish count.
	Sequence() uint64
}

// SlotCounter reports how many player slots are seated.
type SlotCounter interface {
	Count() int
}

// RouterConfig carries the router's dependencies. Designed for injection:
//
//	router := api.NewRouter(api.RouterConfig{Snapshots: buf, Slots: reg})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Snapshots is the published-state source (required).
	Snapshots SnapshotSource

	// Slots reports seated players for the stats endpoint (optional).
	Slots SlotCounter

	// MaxPlayers is the slot cap reported by /api/stats.
	MaxPlayers int

	// RateLimiter is an optional pre-built limiter. If nil one is created
	// from RateLimitConfig (or the defaults).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the allowed origins. Nil means localhost only.
	CORSOrigins []string

	// DisableLogging drops the request logger middleware (for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	snapshots   SnapshotSource
	slots       SlotCounter
	maxPlayers  int
	rateLimiter *IPRateLimiter
}

// NewRouter constructs the HTTP router. It is pure: no goroutines, no
// listeners, safe to hand straight to httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS so floods are rejected cheaply.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{
		snapshots:   cfg.Snapshots,
		slots:       cfg.Slots,
		maxPlayers:  cfg.MaxPlayers,
		rateLimiter: rateLimiter,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/weapons", h.handleGetWeapons)
		r.Get("/enemies", h.handleGetEnemies)
	})

	return r
}
