package server

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"space-defender/internal/api"
	"space-defender/internal/config"
	"space-defender/internal/game"
	"space-defender/internal/protocol"
)

// Server runs the authoritative game loop and the TCP listener for player
// slots. One Server hosts one co-op pair; rounds repeat until shutdown.
type Server struct {
	cfg    config.ServerConfig
	game   config.GameConfig
	engine *game.Engine

	registry *SessionRegistry
	listener net.Listener

	shutdown chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New(cfg config.AppConfig, engine *game.Engine) *Server {
	return &Server{
		cfg:      cfg.Server,
		game:     cfg.Game,
		engine:   engine,
		registry: NewSessionRegistry(cfg.Server.MaxPlayers),
		shutdown: make(chan struct{}),
	}
}

// Registry exposes the slot table for the stats API.
func (s *Server) Registry() *SessionRegistry { return s.registry }

// Addr returns the bound listener address. Valid after Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start opens the listener and launches the accept and round loops.
// It returns immediately; call Stop to shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln
	log.Printf("🎮 game server listening on %s", ln.Addr())

	s.wg.Add(2)
	go s.acceptLoop()
	go s.roundLoop()
	return nil
}

// Stop signals every loop, closes the listener and all sessions, and waits
// for the goroutines to drain.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			s.listener.Close()
		}
		s.registry.CloseAll()
	})
	s.wg.Wait()
}

func (s *Server) stopping() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

func (s *Server) vlog(level int, format string, args ...any) {
	if s.cfg.Verbosity >= level {
		log.Printf(format, args...)
	}
}

// acceptLoop seats incoming connections. The listener deadline keeps the
// loop responsive to shutdown without a dedicated close dance.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		if s.stopping() {
			return
		}
		if tcp, ok := s.listener.(*net.TCPListener); ok {
			tcp.SetDeadline(time.Now().Add(time.Second))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if s.stopping() {
				return
			}
			log.Printf("⚠️ accept error: %v", err)
			continue
		}
		s.handleConnect(conn)
	}
}

func (s *Server) handleConnect(conn net.Conn) {
	sess, err := s.registry.Add(conn)
	if err != nil {
		s.vlog(1, "🚫 rejected connection from %s: %v", conn.RemoteAddr(), err)
		api.RecordConnectionRejected("server_full")
		conn.Close()
		return
	}

	if err := sess.Send(protocol.Handshake{PlayerID: sess.Slot}, s.cfg.WriteTimeout); err != nil {
		log.Printf("⚠️ handshake to player %d failed: %v", sess.Slot+1, err)
		sess.Close()
		s.registry.Remove(sess)
		return
	}
	if snap, ok := s.engine.Snapshots().Latest(); ok {
		sess.Send(snap, s.cfg.WriteTimeout)
	}

	count := s.registry.Count()
	log.Printf("👋 player %d connected from %s (%d/%d)", sess.Slot+1, conn.RemoteAddr(), count, s.cfg.MaxPlayers)
	api.UpdateSlots(count)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.receiveLoop(s.cfg.ReadTimeout, s.shutdown, s.cfg.Verbosity)
		sess.Close()
		s.registry.Remove(sess)
		remaining := s.registry.Count()
		log.Printf("👋 player %d disconnected (%d/%d)", sess.Slot+1, remaining, s.cfg.MaxPlayers)
		api.UpdateSlots(remaining)
	}()
}

// roundLoop drives the phase machine: wait for a full lobby, run a round to
// its terminal phase, return to the lobby, repeat.
func (s *Server) roundLoop() {
	defer s.wg.Done()

	for {
		if s.stopping() {
			return
		}
		if !s.runWaiting() {
			return
		}

		s.engine.StartRound()
		s.runRound()
	}
}

// runWaiting broadcasts lobby snapshots until both slots fill. A lobby left
// partially filled past the timeout is cleared so a stuck client can't hold
// the seat forever. Returns false on shutdown.
func (s *Server) runWaiting() bool {
	start := time.Now()
	ticker := time.NewTicker(s.cfg.WaitingInterval)
	defer ticker.Stop()

	s.vlog(1, "⏳ waiting for %d players...", s.cfg.MaxPlayers)

	for {
		select {
		case <-s.shutdown:
			return false
		case <-ticker.C:
			count := s.registry.Count()
			if count >= s.cfg.MaxPlayers {
				log.Printf("✅ %d/%d players connected, game starting", count, s.cfg.MaxPlayers)
				return true
			}

			snap := s.engine.PublishWaiting()
			s.registry.Broadcast(snap, s.cfg.WriteTimeout)

			if count == 0 {
				start = time.Now()
			} else if time.Since(start) > s.cfg.WaitingTimeout {
				log.Printf("⏰ lobby timed out after %s, dropping %d waiting player(s)", s.cfg.WaitingTimeout, count)
				s.registry.CloseAll()
				start = time.Now()
			}
		}
	}
}

// runRound ticks the simulation until the engine reaches a terminal phase,
// then holds the final snapshot on the wire briefly before the lobby reopens.
func (s *Server) runRound() {
	interval := time.Second / time.Duration(s.game.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for s.engine.Phase() == game.PhasePlaying {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.safeTick()
		}
	}

	log.Printf("🏁 round over: %s (level %d, %d ticks)", s.engine.Phase(), s.engine.Level(), s.engine.TickCount())

	// The tick that flipped the phase already broadcast the terminal
	// snapshot; give clients a beat to show it before the lobby resets.
	select {
	case <-s.shutdown:
		return
	case <-time.After(time.Second):
	}
	s.engine.ResetToWaiting()
}

// safeTick runs one simulation step behind a recover barrier. A panicking
// tick is logged and skipped; the round keeps running on the next tick.
func (s *Server) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("💥 tick panicked: %v", r)
			time.Sleep(50 * time.Millisecond)
		}
	}()

	tickStart := time.Now()
	inputs := s.registry.Inputs()
	snap := s.engine.Tick(inputs, s.registry.Count())
	api.RecordTick(time.Since(tickStart))

	sendStart := time.Now()
	s.registry.Broadcast(snap, s.cfg.WriteTimeout)
	api.RecordBroadcast(time.Since(sendStart))

	api.UpdateEntityCounts(s.engine.EnemyCount(), s.engine.BulletCount(), s.engine.PowerUpCount())

	if tick := s.engine.TickCount(); tick > 0 && tick%600 == 0 {
		s.vlog(2, "🎮 tick %d: %d/%d players, %d bullets, %d enemies, level %d",
			tick, s.registry.Count(), s.cfg.MaxPlayers,
			s.engine.BulletCount(), s.engine.EnemyCount(), s.engine.Level())
	}
}
