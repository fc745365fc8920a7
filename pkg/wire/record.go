package wire

import (
	"fmt"
	"strings"
)

// Level is the severity of a record. Any byte value is legal on the wire.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String returns a human-readable representation of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// ParseLevel parses a level name (case-insensitive) such as "info" or "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

// Record is a single log event.
type Record struct {
	// ID is normally 0, asking the collector to assign one.
	ID uint64

	// TimestampMs is milliseconds since the Unix epoch.
	TimestampMs uint64

	Level Level

	// Code is an application-defined event code.
	Code uint16

	// Message is sent as raw UTF-8 and may not exceed MaxMessageLen bytes.
	Message string
}

// Header identifies the protocol and its revision.
type Header struct {
	Magic   uint32
	Version uint32
}
