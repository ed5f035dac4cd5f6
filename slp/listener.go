package slp

import (
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

// Listener is a UDP endpoint joined to an SLPv2 multicast group on a
// specific local interface. The daemon reads from it on that interface's
// read goroutine and writes replies to it from its dispatch goroutine.
type Listener struct {
	Interface net.IP
	conn      *net.UDPConn
	packet    *ipv4.PacketConn
	log       *slog.Logger
}

// interfaceForIP finds the local network interface that owns ip.
func interfaceForIP(ip net.IP) (*net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
				return &ifaces[i], nil
			}
		}
	}
	return nil, fmt.Errorf("no local interface owns %s", ip)
}

// reusePort is a net.ListenConfig.Control callback that sets SO_REUSEADDR
// before bind, since net.ListenPacket alone does not expose that option.
func reusePort(_, _ string, c syscall.RawConn) error {
	var setErr error
	err := c.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}

// NewListener joins group on the local interface owning ip and binds to
// 0.0.0.0:port (port 0 selects an ephemeral port), with SO_REUSEADDR set.
func NewListener(ip net.IP, port int, group net.IP, log *slog.Logger) (*Listener, error) {
	if log == nil {
		log = slog.Default()
	}

	iface, err := interfaceForIP(ip)
	if err != nil {
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}

	lc := net.ListenConfig{Control: reusePort}
	pc, err := lc.ListenPacket(nil, "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}
	conn := pc.(*net.UDPConn)

	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(iface, &net.UDPAddr{IP: group}); err != nil {
		conn.Close()
		return nil, &InterfaceError{Interface: ip.String(), Err: fmt.Errorf("join group %s: %w", group, err)}
	}

	log.Debug("listener joined group", "interface", ip, "group", group, "local_addr", conn.LocalAddr())

	return &Listener{Interface: ip, conn: conn, packet: p, log: log}, nil
}

// ReadFrom reads one datagram into buf.
func (l *Listener) ReadFrom(buf []byte) (int, net.Addr, error) {
	return l.conn.ReadFrom(buf)
}

// WriteTo sends data to addr using this listener's socket, so the reply's
// source address matches the interface the request arrived on.
func (l *Listener) WriteTo(data []byte, addr net.Addr) (int, error) {
	return l.conn.WriteTo(data, addr)
}

// SetReadDeadline forwards to the underlying connection.
func (l *Listener) SetReadDeadline(t time.Time) error {
	return l.conn.SetReadDeadline(t)
}

// Close leaves the multicast group and closes the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}
