package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stack owns the process-wide network resources used by Send.
// Open it once, share it between goroutines and Close it when all sends are done.
type Stack struct {
	network  Network
	resolver Resolver
	reg      prometheus.Registerer
	metrics  *metrics
	closed   atomic.Bool
}

// Option configures a Stack.
type Option func(*Stack)

// WithNetwork replaces the socket factory.
func WithNetwork(n Network) Option {
	return func(s *Stack) {
		s.network = n
	}
}

// WithResolver replaces the host name resolver (net.DefaultResolver by default).
func WithResolver(r Resolver) Option {
	return func(s *Stack) {
		s.resolver = r
	}
}

// WithMetrics registers send counters on reg. They are unregistered by Close.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Stack) {
		s.reg = reg
	}
}

// Open acquires a Stack. The caller must Close it.
func Open(opts ...Option) (*Stack, error) {
	s := &Stack{
		network:  &SystemNetwork{},
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.reg != nil {
		m, err := newMetrics(s.reg)
		if err != nil {
			return nil, fmt.Errorf("register sender metrics: %w", err)
		}
		s.metrics = m
	}
	return s, nil
}

// Close releases the stack. Subsequent calls return ErrStackClosed.
func (s *Stack) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrStackClosed
	}
	s.metrics.unregister()
	return nil
}

// Send delivers payload to host:port as one batch. It blocks until the OS
// accepts the data or reports an error; ctx bounds resolution and connecting.
func (s *Stack) Send(ctx context.Context, host string, port uint16, mode Mode, payload []byte) error {
	if s.closed.Load() {
		return ErrStackClosed
	}

	var err error
	switch mode {
	case ModeStream:
		err = s.sendStream(ctx, host, port, payload)
	case ModeDatagram:
		err = s.sendDatagram(ctx, host, port, payload)
	default:
		return fmt.Errorf("sender: unsupported mode %s", mode)
	}

	if err != nil {
		var se *SendError
		if errors.As(err, &se) {
			s.metrics.onError(mode, se.Kind)
		}
		return err
	}
	s.metrics.onSuccess(mode, len(payload))
	return nil
}

func (s *Stack) sendDatagram(ctx context.Context, host string, port uint16, payload []byte) error {
	addr, err := s.resolve(ctx, host, port)
	if err != nil {
		return &SendError{Kind: ErrResolveFailed, Mode: ModeDatagram, Addr: hostPort(host, port), Err: err}
	}

	conn, err := s.network.OpenDatagram(ctx)
	if err != nil {
		return &SendError{Kind: ErrSocketCreateFailed, Mode: ModeDatagram, Addr: addr.String(), Err: err}
	}
	defer conn.Close()

	n, err := conn.WriteToUDPAddrPort(payload, addr)
	if err != nil {
		return &SendError{Kind: ErrSendFailed, Mode: ModeDatagram, Addr: addr.String(), Err: err}
	}
	if n != len(payload) {
		return &SendError{Kind: ErrSendFailed, Mode: ModeDatagram, Addr: addr.String(),
			Err: fmt.Errorf("sent %d of %d bytes: %w", n, len(payload), io.ErrShortWrite)}
	}
	return nil
}

func (s *Stack) sendStream(ctx context.Context, host string, port uint16, payload []byte) error {
	addr, err := s.resolve(ctx, host, port)
	if err != nil {
		return &SendError{Kind: ErrResolveFailed, Mode: ModeStream, Addr: hostPort(host, port), Err: err}
	}

	conn, err := s.network.DialStream(ctx, addr)
	if err != nil {
		return &SendError{Kind: dialErrorKind(err), Mode: ModeStream, Addr: addr.String(), Err: err}
	}
	defer conn.Close()

	sent := 0
	for sent < len(payload) {
		n, err := conn.Write(payload[sent:])
		if n > 0 {
			sent += n
		}
		if err != nil {
			return &SendError{Kind: ErrSendFailed, Mode: ModeStream, Addr: addr.String(),
				Err: fmt.Errorf("sent %d of %d bytes: %w", sent, len(payload), err)}
		}
		if n <= 0 {
			return &SendError{Kind: ErrSendFailed, Mode: ModeStream, Addr: addr.String(),
				Err: fmt.Errorf("sent %d of %d bytes: %w", sent, len(payload), io.ErrShortWrite)}
		}
	}
	return nil
}

// resolve parses host as a numeric address, falling back to a name lookup.
// IPv4 results are preferred.
func (s *Stack) resolve(ctx context.Context, host string, port uint16) (netip.AddrPort, error) {
	if host == "" {
		return netip.AddrPort{}, errors.New("empty host")
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(ip.Unmap(), port), nil
	}

	ips, err := s.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("no addresses for %q", host)
	}
	chosen := ips[0].Unmap()
	for _, ip := range ips {
		if ip.Unmap().Is4() {
			chosen = ip.Unmap()
			break
		}
	}
	return netip.AddrPortFrom(chosen, port), nil
}

// dialErrorKind separates socket(2) failures from connection failures.
func dialErrorKind(err error) error {
	var se *os.SyscallError
	if errors.As(err, &se) && se.Syscall == "socket" {
		return ErrSocketCreateFailed
	}
	return ErrConnectFailed
}

func hostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}
