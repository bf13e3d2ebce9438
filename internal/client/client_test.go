package client

import (
	"errors"
	"net"
	"testing"
	"time"

	"space-defender/internal/config"
	"space-defender/internal/protocol"
)

// fakeServer accepts one connection and hands it to the test.
func fakeServer(t *testing.T) (addr string, connCh chan net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	connCh = make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		connCh <- conn
	}()
	return ln.Addr().String(), connCh
}

func testClientConfig() config.ClientConfig {
	cfg := config.DefaultClient()
	cfg.DialTimeout = 2 * time.Second
	cfg.PollTimeout = 50 * time.Millisecond
	return cfg
}

func TestDialHandshake(t *testing.T) {
	addr, connCh := fakeServer(t)

	go func() {
		conn := <-connCh
		protocol.Send(conn, protocol.Handshake{PlayerID: 1})
	}()

	c, err := Dial(addr, testClientConfig())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if c.PlayerID != 1 {
		t.Errorf("PlayerID = %d, want 1", c.PlayerID)
	}
	if c.World.LocalSlot != 1 {
		t.Errorf("World.LocalSlot = %d, want 1", c.World.LocalSlot)
	}
}

func TestPollCatchUpLimit(t *testing.T) {
	addr, connCh := fakeServer(t)

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn := <-connCh
		protocol.Send(conn, protocol.Handshake{PlayerID: 0})
		for i := 1; i <= 5; i++ {
			protocol.Send(conn, protocol.Snapshot{Level: i})
		}
	}()

	c, err := Dial(addr, testClientConfig())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	<-serverDone

	applied, err := c.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if applied != c.cfg.MaxCatchUp {
		t.Errorf("applied = %d, want the catch-up cap of %d", applied, c.cfg.MaxCatchUp)
	}
	if c.World.Level != 3 {
		t.Errorf("Level = %d after first poll, want 3", c.World.Level)
	}

	applied, err = c.Poll()
	if err != nil {
		t.Fatalf("second Poll: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d on second poll, want the remaining 2", applied)
	}
	if c.World.Level != 5 {
		t.Errorf("Level = %d after draining, want 5", c.World.Level)
	}
}

func TestPollMissLimit(t *testing.T) {
	addr, connCh := fakeServer(t)

	go func() {
		conn := <-connCh
		protocol.Send(conn, protocol.Handshake{PlayerID: 0})
		// Then go silent; the link stays open but carries nothing.
	}()

	cfg := testClientConfig()
	cfg.PollTimeout = 10 * time.Millisecond
	cfg.MissLimit = 3

	c, err := Dial(addr, cfg)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	for i := 0; i < cfg.MissLimit-1; i++ {
		applied, err := c.Poll()
		if err != nil || applied != 0 {
			t.Fatalf("poll %d: applied=%d err=%v, want silent empty poll", i+1, applied, err)
		}
	}
	if _, err := c.Poll(); !errors.Is(err, ErrLinkLost) {
		t.Errorf("err = %v at the miss limit, want ErrLinkLost", err)
	}
}

func TestPollClosedConnection(t *testing.T) {
	addr, connCh := fakeServer(t)

	go func() {
		conn := <-connCh
		protocol.Send(conn, protocol.Handshake{PlayerID: 0})
		conn.Close()
	}()

	c, err := Dial(addr, testClientConfig())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	// The close may race the first poll's deadline; a couple of polls is
	// enough for the EOF to surface.
	for i := 0; i < 5; i++ {
		if _, err = c.Poll(); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("Poll never surfaced the closed connection")
	}
	if errors.Is(err, ErrLinkLost) {
		t.Error("closed connection reported as silent-link loss")
	}
}
