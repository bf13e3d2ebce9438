package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"space-defender/internal/protocol"
)

func dialSpectator(t *testing.T, ts *httptest.Server) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestSpectatorLimiter(t *testing.T) {
	sl := NewSpectatorLimiter(2)

	if !sl.Allow("10.0.0.1") || !sl.Allow("10.0.0.1") {
		t.Fatal("first two connections from an IP should be allowed")
	}
	if sl.Allow("10.0.0.1") {
		t.Error("third connection from the same IP should be rejected")
	}
	if !sl.Allow("10.0.0.2") {
		t.Error("a different IP should not be affected by the first IP's count")
	}

	sl.Release("10.0.0.1")
	if !sl.Allow("10.0.0.1") {
		t.Error("releasing a slot should make room for a new connection")
	}
}

func TestSpectatorHubFanOut(t *testing.T) {
	hub := NewSpectatorHub(&fakeSnapshots{seq: 1})
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	c1, _, err := dialSpectator(t, ts)
	if err != nil {
		t.Fatalf("dial spectator 1: %v", err)
	}
	defer c1.Close()

	c2, _, err := dialSpectator(t, ts)
	if err != nil {
		t.Fatalf("dial spectator 2: %v", err)
	}
	defer c2.Close()

	// Registration goes through the hub channel; wait for both to land.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("spectators registered = %d, want 2", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.broadcast <- []byte(`{"level":3}`)

	for i, conn := range []*websocket.Conn{c1, c2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("spectator %d read: %v", i+1, err)
		}
		if string(payload) != `{"level":3}` {
			t.Errorf("spectator %d payload = %s", i+1, payload)
		}
	}
}

func TestSpectatorPerIPCap(t *testing.T) {
	hub := NewSpectatorHub(&fakeSnapshots{})
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	var conns []*websocket.Conn
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for i := 0; i < MaxSpectatorsPerIP; i++ {
		c, _, err := dialSpectator(t, ts)
		if err != nil {
			t.Fatalf("dial spectator %d: %v", i+1, err)
		}
		conns = append(conns, c)
	}

	_, resp, err := dialSpectator(t, ts)
	if err == nil {
		t.Fatal("connection past the per-IP cap should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("over-cap handshake response = %+v, want 429", resp)
	}
}

func TestSpectatorRejectsForeignOrigin(t *testing.T) {
	hub := NewSpectatorHub(&fakeSnapshots{})
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"http://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("non-localhost origin should fail the handshake")
	}
}

func TestFeedSkipsUnchangedSequence(t *testing.T) {
	src := &fakeSnapshots{seq: 5, snap: protocol.Snapshot{Level: 2}}
	hub := NewSpectatorHub(src)
	go hub.Run()
	defer hub.Stop()
	hub.StartFeed()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	c, _, err := dialSpectator(t, ts)
	if err != nil {
		t.Fatalf("dial spectator: %v", err)
	}
	defer c.Close()

	// First push arrives for the current sequence.
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.ReadMessage(); err != nil {
		t.Fatalf("initial feed read: %v", err)
	}

	// Sequence never advances, so no further frames should arrive.
	c.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := c.ReadMessage(); err == nil {
		t.Error("received a frame for an unchanged snapshot sequence")
	}
}

func TestHubStopDisconnectsSpectators(t *testing.T) {
	hub := NewSpectatorHub(&fakeSnapshots{})
	ran := make(chan struct{})
	go func() {
		hub.Run()
		close(ran)
	}()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer ts.Close()

	c, _, err := dialSpectator(t, ts)
	if err != nil {
		t.Fatalf("dial spectator: %v", err)
	}
	defer c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("spectator never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Stop()
	hub.Stop() // idempotent

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	if n := hub.ClientCount(); n != 0 {
		t.Errorf("client count = %d after Stop, want 0", n)
	}

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.ReadMessage(); err == nil {
		t.Error("spectator socket still served frames after Stop")
	}
}
