package sender

import (
	"bytes"
	"context"
	"net/netip"
	"sync"
)

// fakeNetwork hands out preconfigured connections and records what was dialed.
type fakeNetwork struct {
	mu        sync.Mutex
	stream    *fakeStreamConn
	datagram  *fakeDatagramConn
	dialErr   error
	listenErr error
	dialed    []netip.AddrPort
	opened    int
}

func (n *fakeNetwork) DialStream(ctx context.Context, addr netip.AddrPort) (StreamConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dialed = append(n.dialed, addr)
	if n.dialErr != nil {
		return nil, n.dialErr
	}
	return n.stream, nil
}

func (n *fakeNetwork) OpenDatagram(ctx context.Context) (DatagramConn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened++
	if n.listenErr != nil {
		return nil, n.listenErr
	}
	return n.datagram, nil
}

// fakeStreamConn accepts at most maxChunk bytes per Write when maxChunk > 0.
type fakeStreamConn struct {
	maxChunk  int
	zeroAfter int // return (0, nil) once this many writes succeeded; 0 disables
	writeErr  error
	buf       bytes.Buffer
	writes    int
	closed    int
}

func (c *fakeStreamConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if c.zeroAfter > 0 && c.writes >= c.zeroAfter {
		return 0, nil
	}
	c.writes++
	n := len(p)
	if c.maxChunk > 0 && n > c.maxChunk {
		n = c.maxChunk
	}
	c.buf.Write(p[:n])
	return n, nil
}

func (c *fakeStreamConn) Close() error {
	c.closed++
	return nil
}

// fakeDatagramConn reports at most maxChunk bytes sent when maxChunk > 0.
type fakeDatagramConn struct {
	maxChunk int
	writeErr error
	sent     [][]byte
	to       []netip.AddrPort
	closed   int
}

func (c *fakeDatagramConn) WriteToUDPAddrPort(p []byte, addr netip.AddrPort) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	n := len(p)
	if c.maxChunk > 0 && n > c.maxChunk {
		n = c.maxChunk
	}
	c.sent = append(c.sent, append([]byte(nil), p[:n]...))
	c.to = append(c.to, addr)
	return n, nil
}

func (c *fakeDatagramConn) Close() error {
	c.closed++
	return nil
}

// fakeResolver answers from a fixed table.
type fakeResolver struct {
	hosts map[string][]netip.Addr
	err   error
	calls int
}

func (r *fakeResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.hosts[host], nil
}
