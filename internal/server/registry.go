package server

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"space-defender/internal/game"
	"space-defender/internal/protocol"
)

// ErrServerFull is returned when both player slots are taken.
var ErrServerFull = errors.New("server full")

// SessionRegistry owns the slot table. Slots are assigned lowest-free-first
// so a reconnecting player lands back in the seat that just opened.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int]*Session
	max      int
}

func NewSessionRegistry(maxPlayers int) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[int]*Session),
		max:      maxPlayers,
	}
}

// Add seats a connection in the lowest free slot.
func (r *SessionRegistry) Add(conn net.Conn) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for slot := 0; slot < r.max; slot++ {
		if _, taken := r.sessions[slot]; !taken {
			s := newSession(slot, conn)
			r.sessions[slot] = s
			return s, nil
		}
	}
	return nil, ErrServerFull
}

// Remove frees a slot. No-op if the slot is already empty or seated by a
// different session (a replacement raced in).
func (r *SessionRegistry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[s.Slot]; ok && current == s {
		delete(r.sessions, s.Slot)
	}
}

// Count returns the number of seated sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Inputs samples every slot's latest input. Empty slots yield the zero
// message (no keys, no trigger).
func (r *SessionRegistry) Inputs() [game.MaxPlayers]protocol.ClientMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var inputs [game.MaxPlayers]protocol.ClientMessage
	for slot, s := range r.sessions {
		if slot < game.MaxPlayers {
			inputs[slot] = s.Input()
		}
	}
	return inputs
}

// Broadcast sends a snapshot to every seated session. A failed write closes
// that session's socket; its receive loop notices and frees the slot, which
// the tick loop then sees as a disconnect.
func (r *SessionRegistry) Broadcast(snap protocol.Snapshot, timeout time.Duration) {
	r.mu.Lock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	for _, s := range targets {
		if err := s.Send(snap, timeout); err != nil {
			log.Printf("⚠️ broadcast to player %d failed: %v", s.Slot+1, err)
			s.Close()
		}
	}
}

// CloseAll tears down every seated session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	for _, s := range targets {
		s.Close()
	}
}
