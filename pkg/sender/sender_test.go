package sender

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/logship/pkg/wire"
)

func openFake(t *testing.T, n *fakeNetwork, opts ...Option) *Stack {
	t.Helper()
	opts = append([]Option{WithNetwork(n), WithResolver(&fakeResolver{})}, opts...)
	s, err := Open(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func payload(t *testing.T) []byte {
	t.Helper()
	buf, err := wire.Encode([]wire.Record{
		{TimestampMs: 1700000000000, Level: wire.LevelInfo, Code: 1001, Message: "Service started"},
		{TimestampMs: 1700000000500, Level: wire.LevelError, Code: 5001, Message: "Database connection failed"},
	}, wire.DefaultMagic, wire.DefaultVersion)
	require.NoError(t, err)
	return buf
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"tcp", ModeStream, false},
		{"Stream", ModeStream, false},
		{"udp", ModeDatagram, false},
		{" datagram ", ModeDatagram, false},
		{"sctp", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "udp", ModeDatagram.Network())
	assert.Equal(t, "tcp", ModeStream.Network())
}

func TestSend_DatagramShortWriteFails(t *testing.T) {
	conn := &fakeDatagramConn{maxChunk: 10}
	s := openFake(t, &fakeNetwork{datagram: conn})

	err := s.Send(context.Background(), "10.0.0.1", 9100, ModeDatagram, payload(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Len(t, conn.sent, 1, "datagram mode must not resend the remainder")
	assert.Equal(t, 1, conn.closed)
}

func TestSend_StreamResumesShortWrites(t *testing.T) {
	p := payload(t)
	conn := &fakeStreamConn{maxChunk: 10}
	n := &fakeNetwork{stream: conn}
	s := openFake(t, n)

	err := s.Send(context.Background(), "10.0.0.1", 9101, ModeStream, p)
	require.NoError(t, err)
	assert.Equal(t, p, conn.buf.Bytes())
	assert.Equal(t, (len(p)+9)/10, conn.writes)
	assert.Equal(t, 1, conn.closed)
	assert.Equal(t, []netip.AddrPort{netip.MustParseAddrPort("10.0.0.1:9101")}, n.dialed)
}

func TestSend_DatagramWholeBatch(t *testing.T) {
	p := payload(t)
	conn := &fakeDatagramConn{}
	s := openFake(t, &fakeNetwork{datagram: conn})

	require.NoError(t, s.Send(context.Background(), "10.0.0.2", 9100, ModeDatagram, p))
	require.Len(t, conn.sent, 1)
	assert.Equal(t, p, conn.sent[0])
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.2:9100"), conn.to[0])
	assert.Equal(t, 1, conn.closed)
}

func TestSend_StreamZeroWriteFails(t *testing.T) {
	conn := &fakeStreamConn{maxChunk: 4, zeroAfter: 2}
	s := openFake(t, &fakeNetwork{stream: conn})

	err := s.Send(context.Background(), "10.0.0.1", 9101, ModeStream, payload(t))
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, 8, conn.buf.Len())
	assert.Equal(t, 1, conn.closed)
}

func TestSend_WriteErrors(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("stream", func(t *testing.T) {
		conn := &fakeStreamConn{writeErr: boom}
		s := openFake(t, &fakeNetwork{stream: conn})
		err := s.Send(context.Background(), "10.0.0.1", 1, ModeStream, payload(t))
		assert.ErrorIs(t, err, ErrSendFailed)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, conn.closed)
	})

	t.Run("datagram", func(t *testing.T) {
		conn := &fakeDatagramConn{writeErr: boom}
		s := openFake(t, &fakeNetwork{datagram: conn})
		err := s.Send(context.Background(), "10.0.0.1", 1, ModeDatagram, payload(t))
		assert.ErrorIs(t, err, ErrSendFailed)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, conn.closed)
	})
}

func TestSend_SocketAndConnectFailures(t *testing.T) {
	socketErr := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("socket", syscall.EMFILE)}
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name string
		n    *fakeNetwork
		mode Mode
		want error
	}{
		{"stream socket", &fakeNetwork{dialErr: socketErr}, ModeStream, ErrSocketCreateFailed},
		{"stream connect", &fakeNetwork{dialErr: refused}, ModeStream, ErrConnectFailed},
		{"datagram socket", &fakeNetwork{listenErr: syscall.EMFILE}, ModeDatagram, ErrSocketCreateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openFake(t, tt.n)
			err := s.Send(context.Background(), "127.0.0.1", 9, tt.mode, payload(t))
			assert.ErrorIs(t, err, tt.want)

			var se *SendError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.mode, se.Mode)
			assert.Equal(t, "127.0.0.1:9", se.Addr)
		})
	}
}

func TestSend_Resolve(t *testing.T) {
	resolver := &fakeResolver{hosts: map[string][]netip.Addr{
		"collector.local": {netip.MustParseAddr("2001:db8::1"), netip.MustParseAddr("192.0.2.7")},
		"v6only.local":    {netip.MustParseAddr("2001:db8::2")},
	}}

	tests := []struct {
		host      string
		want      netip.AddrPort
		wantCalls int
	}{
		{"192.0.2.1", netip.MustParseAddrPort("192.0.2.1:9100"), 0},
		{"::ffff:192.0.2.9", netip.MustParseAddrPort("192.0.2.9:9100"), 0},
		{"2001:db8::5", netip.MustParseAddrPort("[2001:db8::5]:9100"), 0},
		{"collector.local", netip.MustParseAddrPort("192.0.2.7:9100"), 1},
		{"v6only.local", netip.MustParseAddrPort("[2001:db8::2]:9100"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			resolver.calls = 0
			conn := &fakeDatagramConn{}
			s := openFake(t, &fakeNetwork{datagram: conn}, WithResolver(resolver))

			require.NoError(t, s.Send(context.Background(), tt.host, 9100, ModeDatagram, []byte("x")))
			assert.Equal(t, tt.want, conn.to[0])
			assert.Equal(t, tt.wantCalls, resolver.calls)
		})
	}
}

func TestSend_ResolveFailed(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		resolver *fakeResolver
	}{
		{"lookup error", "nowhere.invalid", &fakeResolver{err: errors.New("no such host")}},
		{"no addresses", "empty.local", &fakeResolver{}},
		{"empty host", "", &fakeResolver{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNetwork{stream: &fakeStreamConn{}, datagram: &fakeDatagramConn{}}
			s := openFake(t, n, WithResolver(tt.resolver))

			for _, mode := range []Mode{ModeStream, ModeDatagram} {
				err := s.Send(context.Background(), tt.host, 9100, mode, []byte("x"))
				assert.ErrorIs(t, err, ErrResolveFailed)
			}
			assert.Empty(t, n.dialed, "no socket may be opened when resolution fails")
			assert.Zero(t, n.opened)
		})
	}
}

func TestStack_Close(t *testing.T) {
	s, err := Open(WithNetwork(&fakeNetwork{datagram: &fakeDatagramConn{}}))
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), ErrStackClosed)
	assert.ErrorIs(t, s.Send(context.Background(), "127.0.0.1", 1, ModeDatagram, []byte("x")), ErrStackClosed)
}

func TestStack_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := &fakeNetwork{
		stream:   &fakeStreamConn{},
		datagram: &fakeDatagramConn{maxChunk: 1},
	}
	s, err := Open(WithNetwork(n), WithResolver(&fakeResolver{}), WithMetrics(reg))
	require.NoError(t, err)

	p := payload(t)
	require.NoError(t, s.Send(context.Background(), "127.0.0.1", 1, ModeStream, p))
	require.Error(t, s.Send(context.Background(), "127.0.0.1", 1, ModeDatagram, p))
	require.Error(t, s.Send(context.Background(), "nowhere", 1, ModeDatagram, p))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.batches.WithLabelValues("stream")))
	assert.Equal(t, float64(len(p)), testutil.ToFloat64(s.metrics.bytes.WithLabelValues("stream")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.errors.WithLabelValues("datagram", "send")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.errors.WithLabelValues("datagram", "resolve")))

	// a second stack cannot register while the first is open
	_, err = Open(WithMetrics(reg))
	assert.Error(t, err)

	require.NoError(t, s.Close())
	s2, err := Open(WithMetrics(reg))
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSend_LoopbackTCP(t *testing.T) {
	lsnr, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lsnr.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := lsnr.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		// one connection carries exactly one batch; EOF ends it
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	s, err := Open()
	require.NoError(t, err)
	defer s.Close()

	port := uint16(lsnr.Addr().(*net.TCPAddr).Port)
	p := payload(t)
	require.NoError(t, s.Send(context.Background(), "127.0.0.1", port, ModeStream, p))

	select {
	case data := <-received:
		assert.True(t, bytes.Equal(p, data))
		records, err := wire.Decode(data, wire.DefaultMagic, wire.DefaultVersion)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestSend_LoopbackUDP(t *testing.T) {
	pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer pc.Close()
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(5*time.Second)))

	s, err := Open()
	require.NoError(t, err)
	defer s.Close()

	port := uint16(pc.LocalAddr().(*net.UDPAddr).Port)
	p := payload(t)
	require.NoError(t, s.Send(context.Background(), "127.0.0.1", port, ModeDatagram, p))

	buf := make([]byte, 2048)
	n, _, err := pc.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, p, buf[:n])
}

func TestSend_LoopbackConnectRefused(t *testing.T) {
	lsnr, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := uint16(lsnr.Addr().(*net.TCPAddr).Port)
	require.NoError(t, lsnr.Close())

	s, err := Open()
	require.NoError(t, err)
	defer s.Close()

	err = s.Send(context.Background(), "127.0.0.1", port, ModeStream, payload(t))
	assert.ErrorIs(t, err, ErrConnectFailed)
}
