package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"space-defender/internal/config"
	"space-defender/internal/protocol"
)

// ErrLinkLost is returned by Poll after the miss limit: the socket looks
// open but the server has gone silent for too long to keep pretending.
var ErrLinkLost = errors.New("server link lost")

// Client is one player-side connection. Not safe for concurrent use; drive
// it from a single loop the way the server drives its tick.
type Client struct {
	conn net.Conn
	cfg  config.ClientConfig

	// PlayerID is the slot the server assigned in the handshake.
	PlayerID int

	// World is the latest applied server state.
	World *World

	missCount int
}

// Dial connects, completes the handshake and returns a ready client. The
// server's first frame is always the slot assignment.
func Dial(addr string, cfg config.ClientConfig) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	conn.SetReadDeadline(time.Now().Add(cfg.DialTimeout))
	var hs protocol.Handshake
	if err := protocol.ReceiveInto(conn, &hs); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}

	return &Client{
		conn:     conn,
		cfg:      cfg,
		PlayerID: hs.PlayerID,
		World:    NewWorld(hs.PlayerID),
	}, nil
}

// SendInput ships the current input sample. Keys are the currently pressed
// movement keys, sent every client tick whether or not anything changed.
func (c *Client) SendInput(keys []string, shoot bool) error {
	return protocol.Send(c.conn, protocol.ClientMessage{Keys: keys, Shoot: shoot})
}

// NotifyGameOver tells the server this client has seen the terminal state.
// Informational only; the server ends rounds on its own authority.
func (c *Client) NotifyGameOver() error {
	return protocol.Send(c.conn, protocol.ClientMessage{
		Message:  protocol.ControlGameOver,
		PlayerID: c.PlayerID,
	})
}

// Poll drains pending snapshots and applies them to the world, newest last.
// At most MaxCatchUp snapshots are consumed per call so a client that fell
// behind converges over a few polls instead of stalling on a burst.
//
// Returns the number of snapshots applied. ErrLinkLost after MissLimit
// consecutive empty polls; any transport error is fatal.
func (c *Client) Poll() (int, error) {
	applied := 0
	for applied < c.cfg.MaxCatchUp {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PollTimeout))

		var snap protocol.Snapshot
		err := protocol.ReceiveInto(c.conn, &snap)
		if err != nil {
			if errors.Is(err, protocol.ErrTimeout) {
				break
			}
			return applied, fmt.Errorf("receive snapshot: %w", err)
		}
		c.World.Apply(snap)
		applied++
	}

	if applied == 0 {
		c.missCount++
		if c.missCount >= c.cfg.MissLimit {
			return 0, ErrLinkLost
		}
	} else {
		c.missCount = 0
	}
	return applied, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
