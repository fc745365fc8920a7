package sender

import (
	"context"
	"net"
	"net/netip"
)

// StreamConn is the part of a TCP connection used by stream delivery.
// net.Conn satisfies this interface.
type StreamConn interface {
	Write(p []byte) (int, error)
	Close() error
}

// DatagramConn is the part of an unconnected UDP socket used by datagram delivery.
// *net.UDPConn satisfies this interface.
type DatagramConn interface {
	WriteToUDPAddrPort(p []byte, addr netip.AddrPort) (int, error)
	Close() error
}

// Network creates sockets. Replace it to run Send against fakes.
type Network interface {
	// DialStream creates a TCP socket and connects it to addr.
	DialStream(ctx context.Context, addr netip.AddrPort) (StreamConn, error)

	// OpenDatagram creates an unconnected UDP socket.
	OpenDatagram(ctx context.Context) (DatagramConn, error)
}

// Resolver looks up host names. *net.Resolver satisfies this interface.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// SystemNetwork opens real sockets through the net package.
type SystemNetwork struct {
	Dialer net.Dialer
}

// DialStream connects a TCP socket to addr.
func (n *SystemNetwork) DialStream(ctx context.Context, addr netip.AddrPort) (StreamConn, error) {
	return n.Dialer.DialContext(ctx, "tcp", addr.String())
}

// OpenDatagram binds a UDP socket to an ephemeral local port.
func (n *SystemNetwork) OpenDatagram(ctx context.Context) (DatagramConn, error) {
	var lc net.ListenConfig
	pc, err := lc.ListenPacket(ctx, "udp", ":0")
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}
