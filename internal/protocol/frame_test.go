package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// chunkReader feeds the underlying data in tiny increments to simulate a
// transport whose reads return partial data.
type chunkReader struct {
	data  []byte
	pos   int
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := c.chunk
	if n > len(p) {
		n = len(p)
	}
	if c.pos+n > len(c.data) {
		n = len(c.data) - c.pos
	}
	copy(p, c.data[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

// TestFrameRoundTrip verifies send/receive symmetry across payload sizes,
// including frames large enough to span many TCP segments.
func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  map[string]any
	}{
		{"empty object", map[string]any{}},
		{"handshake", map[string]any{"player_id": float64(1)}},
		{"input", map[string]any{"keys": []any{"a", "d"}, "shoot": true}},
		{"large", map[string]any{"blob": strings.Repeat("x", 80*1024)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Send(&buf, tt.msg); err != nil {
				t.Fatalf("Send failed: %v", err)
			}

			raw, err := Receive(&buf)
			if err != nil {
				t.Fatalf("Receive failed: %v", err)
			}

			var got map[string]any
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			want, _ := json.Marshal(tt.msg)
			gotNorm, _ := json.Marshal(got)
			if !bytes.Equal(want, gotNorm) {
				t.Errorf("round trip mismatch: sent %s, got %s", want, gotNorm)
			}
		})
	}
}

// TestHeaderFormat verifies the header is a 10-byte left-justified ASCII
// decimal, space padded.
func TestHeaderFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Send(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	frame := buf.Bytes()
	if len(frame) < HeaderSize {
		t.Fatalf("frame shorter than header: %d bytes", len(frame))
	}
	header := string(frame[:HeaderSize])
	payload := frame[HeaderSize:]

	want := len(payload)
	if got := strings.TrimRight(header, " "); got != "" {
		n := 0
		for _, r := range got {
			if r < '0' || r > '9' {
				t.Fatalf("header contains non-digit: %q", header)
			}
			n = n*10 + int(r-'0')
		}
		if n != want {
			t.Errorf("header length %d, payload is %d bytes", n, want)
		}
	} else {
		t.Fatalf("header is blank: %q", header)
	}
	if header[0] == ' ' {
		t.Errorf("header is not left-justified: %q", header)
	}
}

// TestPartialReads verifies the codec reconstructs a frame even when the
// transport returns one to seven bytes per read call.
func TestPartialReads(t *testing.T) {
	msg := map[string]any{"keys": []any{"w", "a", "s", "d"}, "shoot": true, "pad": strings.Repeat("y", 9000)}
	var buf bytes.Buffer
	if err := Send(&buf, msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	for chunk := 1; chunk <= 7; chunk++ {
		r := &chunkReader{data: buf.Bytes(), chunk: chunk}
		raw, err := Receive(r)
		if err != nil {
			t.Fatalf("chunk=%d: Receive failed: %v", chunk, err)
		}
		var got map[string]any
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("chunk=%d: bad payload: %v", chunk, err)
		}
		if got["shoot"] != true {
			t.Errorf("chunk=%d: payload corrupted", chunk)
		}
	}
}

// TestReceiveMalformedHeader verifies a non-numeric header tears the stream
// down instead of being trusted.
func TestReceiveMalformedHeader(t *testing.T) {
	r := strings.NewReader("not-a-num.{\"a\":1}")
	if _, err := Receive(r); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed for malformed header, got %v", err)
	}
}

// TestReceiveEOF verifies a cleanly closed peer maps to ErrClosed.
func TestReceiveEOF(t *testing.T) {
	if _, err := Receive(strings.NewReader("")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on EOF, got %v", err)
	}
}

// TestReceiveTruncatedPayload verifies a peer dying mid-payload maps to
// ErrClosed, not a partial message.
func TestReceiveTruncatedPayload(t *testing.T) {
	frame := "100       " + `{"partial":`
	if _, err := Receive(strings.NewReader(frame)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on truncated payload, got %v", err)
	}
}

// TestReceiveOversizedFrame verifies the size cap rejects absurd headers.
func TestReceiveOversizedFrame(t *testing.T) {
	frame := "999999999 " + "{}"
	if _, err := Receive(strings.NewReader(frame)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed for oversized frame, got %v", err)
	}
}

// TestReceiveTimeout verifies an idle connection with a read deadline reports
// ErrTimeout, distinct from disconnection.
func TestReceiveTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	server.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	if _, err := Receive(server); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout on idle read, got %v", err)
	}
}

// TestReceiveInto verifies typed decoding and that JSON garbage is treated the
// same as a disconnect.
func TestReceiveInto(t *testing.T) {
	var buf bytes.Buffer
	if err := Send(&buf, ClientMessage{Keys: []string{"d"}, Shoot: true}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	var msg ClientMessage
	if err := ReceiveInto(&buf, &msg); err != nil {
		t.Fatalf("ReceiveInto failed: %v", err)
	}
	if len(msg.Keys) != 1 || msg.Keys[0] != "d" || !msg.Shoot {
		t.Errorf("decoded message mismatch: %+v", msg)
	}

	garbage := "5         " + "{city"
	var out ClientMessage
	if err := ReceiveInto(strings.NewReader(garbage), &out); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed for JSON garbage, got %v", err)
	}
}
