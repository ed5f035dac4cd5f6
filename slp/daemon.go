package slp

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"
)

// DaemonConfig configures a directory agent.
type DaemonConfig struct {
	IPAddrs        []net.IP
	McastPort      int
	McastGroup     net.IP
	Scope          string
	Logger         *slog.Logger
	ActivityWindow time.Duration
}

func (c *DaemonConfig) withDefaults() {
	if c.McastPort == 0 {
		c.McastPort = 427
	}
	if c.McastGroup == nil {
		c.McastGroup = net.IPv4(239, 255, 255, 253)
	}
	if c.Scope == "" {
		c.Scope = "DEFAULT"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ActivityWindow == 0 {
		c.ActivityWindow = 15 * time.Minute
	}
}

type inboundDatagram struct {
	iface    string
	data     []byte
	addr     net.Addr
	listener *Listener
}

// Daemon is the directory agent: it owns one Listener per configured
// interface and a Registry, and dispatches received PDUs to registry
// operations. All registry mutation, sweeping, and response encoding
// happens on a single goroutine, so the registry needs no lock.
type Daemon struct {
	cfg       DaemonConfig
	registry  *Registry
	activity  *ActivityStats
	listeners map[string]*Listener

	inbound      chan inboundDatagram
	snapshotReqs chan snapshotRequest
	done         chan struct{}
	wg           sync.WaitGroup

	log *slog.Logger
}

type snapshotRequest struct {
	iface string
	resp  chan map[string]*Registration
}

// NewDaemon creates listeners for every configured interface and starts
// the dispatch loop. On partial interface failure, the daemon still
// starts on whichever interfaces succeeded; if none did, it returns the
// last InterfaceError encountered.
func NewDaemon(cfg DaemonConfig) (*Daemon, error) {
	cfg.withDefaults()

	d := &Daemon{
		cfg:          cfg,
		registry:     NewRegistry(),
		activity:     NewActivityStats(cfg.ActivityWindow),
		listeners:    make(map[string]*Listener),
		inbound:      make(chan inboundDatagram, 64),
		snapshotReqs: make(chan snapshotRequest),
		done:         make(chan struct{}),
		log:          cfg.Logger,
	}

	var lastErr error
	for _, ip := range cfg.IPAddrs {
		l, err := NewListener(ip, cfg.McastPort, cfg.McastGroup, d.log.With("interface", ip.String()))
		if err != nil {
			d.log.Warn("failed to start listener", "interface", ip.String(), "err", err)
			lastErr = err
			continue
		}
		key := ip.String()
		d.listeners[key] = l
		d.registry.AddInterface(key)

		d.wg.Add(1)
		go d.readLoop(key, l)
	}

	if len(d.listeners) == 0 {
		return nil, lastErr
	}

	d.wg.Add(1)
	go d.run()

	return d, nil
}

func (d *Daemon) readLoop(iface string, l *Listener) {
	defer d.wg.Done()

	buf := make([]byte, 64*1024)
	for {
		select {
		case <-d.done:
			return
		default:
		}

		_ = l.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, addr, err := l.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			select {
			case <-d.done:
			default:
				d.log.Warn("listener read failed", "interface", iface, "err", err)
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case d.inbound <- inboundDatagram{iface: iface, data: data, addr: addr, listener: l}:
		case <-d.done:
			return
		}
	}
}

// run is the single dispatch goroutine: it serializes registry mutation,
// the 500ms sweep, and shutdown through one select loop.
func (d *Daemon) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case now := <-ticker.C:
			for _, e := range d.registry.Sweep(now) {
				d.log.Info("registration expired", "interface", e.Interface, "url", e.URL)
			}
			d.activity.Prune()
		case dg := <-d.inbound:
			d.handle(dg)
		case req := <-d.snapshotReqs:
			req.resp <- d.snapshot(req.iface)
		}
	}
}

func (d *Daemon) snapshot(iface string) map[string]*Registration {
	out := make(map[string]*Registration)
	for url, rec := range d.registry.records[iface] {
		cp := *rec
		out[url] = &cp
	}
	return out
}

func (d *Daemon) handle(dg inboundDatagram) {
	pdu, err := ParsePDU(dg.data)
	if err != nil {
		d.log.Debug("dropped malformed pdu", "interface", dg.iface, "addr", dg.addr, "err", err)
		return
	}

	d.activity.Record(dg.iface, pdu.FunctionID())

	switch p := pdu.(type) {
	case *ServiceRequest:
		d.handleServiceRequest(dg, p)
	case *ServiceRegistration:
		d.handleServiceRegistration(dg, p)
	case *ServiceDeregistration:
		d.handleServiceDeregistration(dg, p)
	case *AttributeRequest:
		d.handleAttributeRequest(dg, p)
	default:
		d.log.Debug("dropped pdu not handled by daemon", "interface", dg.iface, "function_id", pdu.FunctionID())
	}
}

func (d *Daemon) scopeMatches(iface string, scope string) bool {
	if scope != d.cfg.Scope {
		d.log.Debug("dropped pdu: scope mismatch", "interface", iface, "scope", scope, "want", d.cfg.Scope)
		return false
	}
	return true
}

func (d *Daemon) handleServiceRequest(dg inboundDatagram, p *ServiceRequest) {
	if !d.scopeMatches(dg.iface, p.ScopeList) {
		return
	}
	entries := d.registry.FindURLs(dg.iface, p.ServiceType)
	resp, err := EncodeServiceReply(p.Hdr.XID, p.Hdr.LanguageTag, 0, entries)
	if err != nil {
		d.log.Warn("failed to encode service reply", "err", err)
		return
	}
	if _, err := dg.listener.WriteTo(resp, dg.addr); err != nil {
		d.log.Warn("failed to send service reply", "addr", dg.addr, "err", err)
	}
}

func (d *Daemon) handleServiceRegistration(dg inboundDatagram, p *ServiceRegistration) {
	if !d.scopeMatches(dg.iface, p.ScopeList) {
		return
	}
	d.registry.Register(dg.iface, p.ServiceType, p.ScopeList, p.AttrList, p.URLEntry.Lifetime, p.URLEntry.URL, time.Now())
	d.log.Info("registered", "interface", dg.iface, "service_type", p.ServiceType, "url", p.URLEntry.URL, "lifetime", p.URLEntry.Lifetime)

	resp, err := EncodeServiceAcknowledge(p.Hdr.XID, p.Hdr.LanguageTag, 0)
	if err != nil {
		d.log.Warn("failed to encode acknowledge", "err", err)
		return
	}
	if _, err := dg.listener.WriteTo(resp, dg.addr); err != nil {
		d.log.Warn("failed to send acknowledge", "addr", dg.addr, "err", err)
	}
}

func (d *Daemon) handleServiceDeregistration(dg inboundDatagram, p *ServiceDeregistration) {
	if !d.scopeMatches(dg.iface, p.ScopeList) {
		return
	}
	if d.registry.Deregister(dg.iface, p.URLEntry.URL) {
		d.log.Info("deregistered", "interface", dg.iface, "url", p.URLEntry.URL)
	}

	resp, err := EncodeServiceAcknowledge(p.Hdr.XID, p.Hdr.LanguageTag, 0)
	if err != nil {
		d.log.Warn("failed to encode acknowledge", "err", err)
		return
	}
	if _, err := dg.listener.WriteTo(resp, dg.addr); err != nil {
		d.log.Warn("failed to send acknowledge", "addr", dg.addr, "err", err)
	}
}

func (d *Daemon) handleAttributeRequest(dg inboundDatagram, p *AttributeRequest) {
	if !d.scopeMatches(dg.iface, p.ScopeList) {
		return
	}
	attrs := d.registry.FindAttrs(dg.iface, p.URL)
	resp, err := EncodeAttributeReply(p.Hdr.XID, p.Hdr.LanguageTag, 0, attrs)
	if err != nil {
		d.log.Warn("failed to encode attribute reply", "err", err)
		return
	}
	if _, err := dg.listener.WriteTo(resp, dg.addr); err != nil {
		d.log.Warn("failed to send attribute reply", "addr", dg.addr, "err", err)
	}
}

// Snapshot returns a copy of the current registrations for interface i,
// for monitoring tools (slpmon). The request is routed through the
// dispatch goroutine like any other event, so it never races with
// registry mutation. Returns nil if the daemon has been closed.
func (d *Daemon) Snapshot(iface string) map[string]*Registration {
	resp := make(chan map[string]*Registration, 1)
	select {
	case d.snapshotReqs <- snapshotRequest{iface: iface, resp: resp}:
	case <-d.done:
		return nil
	}
	select {
	case s := <-resp:
		return s
	case <-d.done:
		return nil
	}
}

// ActivitySnapshot returns recent per-interface PDU traffic counts. Unlike
// Snapshot, this does not go through the dispatch goroutine: ActivityStats
// keeps its own lock, and monitoring tools can tolerate a slightly stale
// read here.
func (d *Daemon) ActivitySnapshot() []ActivitySummary {
	return d.activity.Snapshot()
}

// Interfaces returns the interfaces the daemon is currently listening on.
func (d *Daemon) Interfaces() []string {
	out := make([]string, 0, len(d.listeners))
	for i := range d.listeners {
		out = append(out, i)
	}
	return out
}

// Close stops the sweeper and all listener goroutines and closes every
// socket.
func (d *Daemon) Close() error {
	close(d.done)
	d.wg.Wait()

	var firstErr error
	for _, l := range d.listeners {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
