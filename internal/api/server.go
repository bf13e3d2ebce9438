package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the spectator WebSocket hub.
type Server struct {
	router      *chi.Mux
	hub         *SpectatorHub
	rateLimiter *IPRateLimiter
}

// NewServer builds the API server. No goroutines or listeners start until
// Start is called, so tests can construct one and use Router() freely.
func NewServer(snapshots SnapshotSource, slots SlotCounter, maxPlayers int) *Server {
	s := &Server{
		hub:         NewSpectatorHub(snapshots),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Snapshots:   snapshots,
		Slots:       slots,
		MaxPlayers:  maxPlayers,
		RateLimiter: s.rateLimiter,
	})
	s.router.Get("/ws", s.hub.HandleWebSocket)

	return s
}

// Router returns the handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start launches the hub workers and serves HTTP on addr. Blocks.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.hub.StartFeed()

	log.Printf("🌐 state API on http://%s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop shuts down background workers.
func (s *Server) Stop() {
	if s.hub != nil {
		s.hub.Stop()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
