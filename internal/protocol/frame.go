// Package protocol implements the length-prefixed JSON wire format shared by
// the game server and its clients.
//
// A frame is a fixed 10-byte ASCII header holding the left-justified decimal
// payload length, followed by exactly that many bytes of UTF-8 JSON. The codec
// is connection-agnostic: the server's broadcast path and the client's receive
// path use the same primitives.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// HeaderSize is the fixed width of the ASCII length header.
const HeaderSize = 10

// MaxFrameSize caps a single payload. Anything larger is treated as a framing
// desync and tears the connection down.
const MaxFrameSize = 4 << 20

var (
	// ErrTimeout means no complete frame arrived within the read deadline.
	// The connection is still usable; callers poll again.
	ErrTimeout = errors.New("protocol: no message available")

	// ErrClosed means the peer is gone or the stream can no longer be
	// trusted (EOF, reset, malformed header, oversized frame). The
	// connection must be torn down.
	ErrClosed = errors.New("protocol: connection closed")
)

// Send serializes msg to JSON and writes one header+payload frame.
// The frame is assembled into a single buffer so the transport sees one
// logical write, never a separately framed header.
func Send(w io.Writer, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("protocol: marshal: %w", err)
	}
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("protocol: frame too large (%d bytes)", len(payload))
	}

	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = append(frame, fmt.Sprintf("%-*d", HeaderSize, len(payload))...)
	frame = append(frame, payload...)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("protocol: write: %w", err)
	}
	return nil
}

// Receive reads exactly one frame and returns its raw JSON payload.
//
// It distinguishes the two failure cases the original collapsed sentinel could
// not: ErrTimeout when the header read deadline expires with no bytes consumed
// (poll again), ErrClosed for EOF, malformed headers, and reads that die
// mid-payload (tear down — a desynced stream cannot be recovered).
func Receive(r io.Reader) (json.RawMessage, error) {
	header := make([]byte, HeaderSize)
	if n, err := io.ReadFull(r, header); err != nil {
		if n == 0 && isTimeout(err) {
			// No bytes of this frame were consumed, the stream is
			// still aligned on a frame boundary.
			return nil, ErrTimeout
		}
		return nil, ErrClosed
	}

	size, err := strconv.Atoi(strings.TrimSpace(string(header)))
	if err != nil || size < 0 || size > MaxFrameSize {
		return nil, ErrClosed
	}

	// io.ReadFull loops over short reads, so payloads spanning many TCP
	// segments reassemble here. A timeout mid-payload leaves the stream
	// desynced and is treated as closed.
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrClosed
	}
	return payload, nil
}

// ReceiveInto reads one frame and unmarshals it into v.
// A JSON decode failure is reported as ErrClosed: a peer producing garbage is
// not trusted further.
func ReceiveInto(r io.Reader, v any) error {
	raw, err := Receive(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrClosed
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
