package slp

import (
	"log/slog"
	"net"
	"time"

	"golang.org/x/net/ipv4"
)

// Sender is a UDP socket bound to a local interface with its outgoing
// multicast interface pinned to that same interface. The
// same socket is also used to receive the unicast reply sent back to it.
type Sender struct {
	Interface net.IP
	conn      *net.UDPConn
	log       *slog.Logger
}

// NewSender binds to ip on the given port (0 = ephemeral) and pins
// outgoing multicast traffic to ip's interface via IP_MULTICAST_IF.
func NewSender(ip net.IP, port int, log *slog.Logger) (*Sender, error) {
	if log == nil {
		log = slog.Default()
	}

	iface, err := interfaceForIP(ip)
	if err != nil {
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}

	p := ipv4.NewPacketConn(conn)
	if err := p.SetMulticastInterface(iface); err != nil {
		conn.Close()
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}

	log.Debug("sender bound", "interface", ip, "local_addr", conn.LocalAddr())

	return &Sender{Interface: ip, conn: conn, log: log}, nil
}

// SendTo transmits data to addr (typically the multicast group:port).
func (s *Sender) SendTo(data []byte, addr *net.UDPAddr) error {
	_, err := s.conn.WriteToUDP(data, addr)
	return err
}

// ReadFrom reads a reply datagram from this sender's own socket.
func (s *Sender) ReadFrom(buf []byte) (int, net.Addr, error) {
	return s.conn.ReadFrom(buf)
}

// SetReadDeadline forwards to the underlying connection.
func (s *Sender) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

// LocalAddr returns the socket's bound local address.
func (s *Sender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Close closes the underlying socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
