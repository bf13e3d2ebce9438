package server

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"space-defender/internal/protocol"
)

// Session is one connected player slot. The receive loop is the only reader
// of the socket; the tick loop reads the input mailbox through the registry.
type Session struct {
	Slot int

	conn net.Conn

	// Latest-input mailbox. The receive loop overwrites it on every input
	// frame; the tick loop reads without clearing, so the last known input
	// keeps applying between client sends.
	mu    sync.Mutex
	input protocol.ClientMessage

	writeMu sync.Mutex
}

func newSession(slot int, conn net.Conn) *Session {
	return &Session{Slot: slot, conn: conn}
}

// storeInput overwrites the mailbox with the newest input sample.
func (s *Session) storeInput(msg protocol.ClientMessage) {
	s.mu.Lock()
	s.input = msg
	s.mu.Unlock()
}

// Input returns the latest input sample without clearing it.
func (s *Session) Input() protocol.ClientMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Send frames a message to the client under a write deadline. Sessions share
// the broadcast goroutine with the handshake path, so writes are serialized.
func (s *Session) Send(msg any, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if timeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return protocol.Send(s.conn, msg)
}

// Close tears down the socket. Safe to call more than once.
func (s *Session) Close() {
	s.conn.Close()
}

// receiveLoop drains inbound frames until the socket dies or shutdown is
// signaled. Each iteration polls with a short read deadline so shutdown is
// noticed promptly on an idle link.
func (s *Session) receiveLoop(readTimeout time.Duration, shutdown <-chan struct{}, verbosity int) {
	for {
		select {
		case <-shutdown:
			return
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg protocol.ClientMessage
		err := protocol.ReceiveInto(s.conn, &msg)
		if err != nil {
			if errors.Is(err, protocol.ErrTimeout) {
				continue
			}
			return
		}

		if msg.IsControl() {
			if msg.Message == protocol.ControlGameOver && verbosity >= 2 {
				log.Printf("🎮 player %d signaled game over", s.Slot+1)
			}
			continue
		}
		s.storeInput(msg)
	}
}
