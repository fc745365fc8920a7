package sender

import (
	"context"
	"fmt"
	"strings"
)

// Sender transmits one encoded batch to a collector.
// *Stack is the standard implementation.
type Sender interface {
	// Send delivers payload to host:port using mode.
	// Returns nil only if the whole payload was handed to the transport.
	Send(ctx context.Context, host string, port uint16, mode Mode, payload []byte) error
}

// Mode selects the transport used by Send.
type Mode int

const (
	// ModeStream sends over a fresh TCP connection per batch.
	ModeStream Mode = iota

	// ModeDatagram sends the batch as a single UDP datagram.
	ModeDatagram
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeDatagram:
		return "datagram"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Network returns the Go network name for the mode.
func (m Mode) Network() string {
	if m == ModeDatagram {
		return "udp"
	}
	return "tcp"
}

// ParseMode accepts "tcp", "stream", "udp" or "datagram".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp", "stream":
		return ModeStream, nil
	case "udp", "datagram":
		return ModeDatagram, nil
	default:
		return 0, fmt.Errorf("unknown transport mode %q (want tcp or udp)", s)
	}
}
