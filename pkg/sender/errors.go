package sender

import (
	"errors"
	"fmt"
)

// Transport errors. Every failed Send returns a *SendError whose Kind is one
// of these; check them with errors.Is.
var (
	// ErrSocketCreateFailed is returned when the OS refuses to create a socket.
	ErrSocketCreateFailed = errors.New("sender: socket create failed")

	// ErrResolveFailed is returned when host is neither a numeric address nor resolvable.
	ErrResolveFailed = errors.New("sender: resolve failed")

	// ErrConnectFailed is returned when a stream connection cannot be established.
	ErrConnectFailed = errors.New("sender: connect failed")

	// ErrSendFailed is returned when the batch was not completely written.
	ErrSendFailed = errors.New("sender: send failed")

	// ErrStackClosed is returned by Send and Close after the stack has been closed.
	ErrStackClosed = errors.New("sender: network stack closed")
)

// SendError describes a failed Send.
type SendError struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	Mode Mode

	// Addr is the destination, resolved when resolution succeeded.
	Addr string

	// Err is the underlying cause, if any.
	Err error
}

func (e *SendError) Error() string {
	msg := fmt.Sprintf("%v: %s %s", e.Kind, e.Mode.Network(), e.Addr)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *SendError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// kindLabel names the error kind for metrics.
func kindLabel(kind error) string {
	switch kind {
	case ErrSocketCreateFailed:
		return "socket_create"
	case ErrResolveFailed:
		return "resolve"
	case ErrConnectFailed:
		return "connect"
	case ErrSendFailed:
		return "send"
	default:
		return "unknown"
	}
}
