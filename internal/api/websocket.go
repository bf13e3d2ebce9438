package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// MaxSpectatorsTotal caps concurrent spectator sockets overall.
	MaxSpectatorsTotal = 100

	// MaxSpectatorsPerIP caps spectator sockets per source IP.
	MaxSpectatorsPerIP = 5

	// spectatorInterval is the push cadence for the read-only feed. It is
	// deliberately slower than the simulation tick; spectators watch, they
	// don't play.
	spectatorInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ spectator rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// SpectatorHub pushes published snapshots to read-only WebSocket watchers.
// Spectators never feed input into the simulation; the hub only ever reads
// the snapshot buffer.
type SpectatorHub struct {
	snapshots SnapshotSource

	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once

	limiter *SpectatorLimiter
}

func NewSpectatorHub(snapshots SnapshotSource) *SpectatorHub {
	return &SpectatorHub{
		snapshots:  snapshots,
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		limiter:    NewSpectatorLimiter(MaxSpectatorsPerIP),
	}
}

// Stop ends Run and the feed goroutine and drops every connected spectator.
func (h *SpectatorHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Run owns the client table. Start it once, before HandleWebSocket can fire.
func (h *SpectatorHub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.limiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			updateSpectators(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📺 spectator connected from %s (%d total)", client.ip, count)
			updateSpectators(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.limiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📺 spectator disconnected (%d remaining)", count)
			updateSpectators(count)

		case message := <-h.broadcast:
			var dead []*websocket.Conn
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range dead {
				h.mu.Lock()
				if client, ok := h.clients[conn]; ok {
					h.limiter.Release(client.ip)
					delete(h.clients, conn)
					conn.Close()
				}
				h.mu.Unlock()
			}
			incrementSpectatorMessages()
		}
	}
}

// StartFeed periodically pushes the latest snapshot to connected spectators.
// Unchanged snapshots and empty rooms cost nothing.
func (h *SpectatorHub) StartFeed() {
	go func() {
		ticker := time.NewTicker(spectatorInterval)
		defer ticker.Stop()

		var lastSeq uint64
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
			}
			if h.ClientCount() == 0 {
				continue
			}
			seq := h.snapshots.Sequence()
			if seq == lastSeq {
				continue
			}
			snap, ok := h.snapshots.Latest()
			if !ok {
				continue
			}
			lastSeq = seq

			payload, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			select {
			case h.broadcast <- payload:
			default:
				// feed is best-effort; drop under backpressure
			}
		}
	}()
}

// ClientCount returns the number of connected spectators.
func (h *SpectatorHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades a spectator connection, enforcing total and
// per-IP caps before the upgrade.
func (h *SpectatorHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := ClientIP(r)

	if h.ClientCount() >= MaxSpectatorsTotal {
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}
	if !h.limiter.Allow(ip) {
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "too many spectators from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ spectator upgrade error: %v", err)
		h.limiter.Release(ip)
		return
	}

	select {
	case h.register <- &wsClient{conn: conn, ip: ip}:
	case <-h.done:
		h.limiter.Release(ip)
		conn.Close()
		return
	}

	// Drain reads so pings are answered and closes are noticed. Inbound
	// payloads are ignored: the feed is one-way.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
