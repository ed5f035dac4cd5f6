package slp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

// perInterfaceTimeout bounds how long a single interface waits for a
// reply; aggregateTimeout bounds the whole fan-out across interfaces.
const (
	perInterfaceTimeout = 1 * time.Second
	aggregateTimeout    = 5 * time.Second
	pollInterval        = 100 * time.Millisecond
)

// ClientConfig configures a discovery client.
type ClientConfig struct {
	IPAddrs    []net.IP
	McastGroup net.IP
	McastPort  int
	Scope      string
	Logger     *slog.Logger
}

func (c *ClientConfig) withDefaults() {
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
}

// Client performs multicast SLPv2 discovery, fanning requests out across
// every configured local interface.
type Client struct {
	cfg ClientConfig
	log *slog.Logger
}

// NewClient returns a Client for the given configuration.
func NewClient(cfg ClientConfig) *Client {
	cfg.withDefaults()
	return &Client{cfg: cfg, log: cfg.Logger}
}

// FindSrvsResult is the aggregated outcome of FindSrvs: one url slice per
// responding interface, and the interfaces that responded, in the same
// order.
type FindSrvsResult struct {
	URLs       [][]string
	Interfaces []net.IP
}

// Register sends a ServiceRegistration to every configured interface in
// parallel and succeeds on the first zero-error-code ServiceAcknowledge.
func (c *Client) Register(ctx context.Context, serviceType, url, attrList string, lifetime uint16) error {
	data, _, err := EncodeServiceRegistration(nil, "", URLEntry{Lifetime: lifetime, URL: url}, serviceType, c.cfg.Scope, attrList)
	if err != nil {
		return err
	}
	_, err = c.sendAll(ctx, data)
	return err
}

// Deregister sends a ServiceDeregistration to every configured interface
// in parallel and succeeds on the first zero-error-code ServiceAcknowledge.
func (c *Client) Deregister(ctx context.Context, url string) error {
	data, _, err := EncodeServiceDeregistration(nil, "", c.cfg.Scope, URLEntry{Lifetime: 0, URL: url})
	if err != nil {
		return err
	}
	_, err = c.sendAll(ctx, data)
	return err
}

// FindSrvs queries every configured interface for serviceType and
// aggregates the successful replies. It fails only if no interface
// responded at all.
func (c *Client) FindSrvs(ctx context.Context, serviceType string) (*FindSrvsResult, error) {
	data, _, err := EncodeServiceRequest(nil, "", serviceType, c.cfg.Scope)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		ip   net.IP
		urls []string
		err  error
	}
	results := make([]outcome, len(c.cfg.IPAddrs))

	g, gctx := errgroup.WithContext(ctx)
	for idx, ip := range c.cfg.IPAddrs {
		idx, ip := idx, ip
		g.Go(func() error {
			pdu, err := c.send(gctx, ip, data)
			if err != nil {
				results[idx] = outcome{ip: ip, err: err}
				return nil
			}
			reply, ok := pdu.(*ServiceReply)
			if !ok {
				results[idx] = outcome{ip: ip, err: fmt.Errorf("unexpected reply function-id %d", pdu.FunctionID())}
				return nil
			}
			urls := make([]string, len(reply.URLEntries))
			for i, e := range reply.URLEntries {
				urls[i] = e.URL
			}
			results[idx] = outcome{ip: ip, urls: urls}
			return nil
		})
	}
	_ = g.Wait()

	res := &FindSrvsResult{}
	for _, o := range results {
		if o.err != nil {
			c.log.Debug("findsrvs: interface did not respond", "interface", o.ip, "err", o.err)
			continue
		}
		res.URLs = append(res.URLs, o.urls)
		res.Interfaces = append(res.Interfaces, o.ip)
	}
	if len(res.Interfaces) == 0 {
		return nil, &InternalError{Err: errors.New("no interface responded")}
	}
	return res, nil
}

// FindAttrs iterates candidates (or every configured interface, if nil)
// and returns the first non-empty attr-list. It fails with InternalError
// only if every candidate errored outright.
func (c *Client) FindAttrs(ctx context.Context, url string, candidates []net.IP) (string, error) {
	if candidates == nil {
		candidates = c.cfg.IPAddrs
	}
	data, _, err := EncodeAttributeRequest(nil, "", url, c.cfg.Scope)
	if err != nil {
		return "", err
	}

	succeeded := 0
	for _, ip := range candidates {
		pdu, err := c.send(ctx, ip, data)
		if err != nil {
			c.log.Debug("findattrs: interface did not respond", "interface", ip, "err", err)
			continue
		}
		reply, ok := pdu.(*AttributeReply)
		if !ok {
			c.log.Debug("findattrs: unexpected reply", "interface", ip, "function_id", pdu.FunctionID())
			continue
		}
		succeeded++
		if reply.AttrList != "" {
			return reply.AttrList, nil
		}
	}

	if succeeded == 0 && len(candidates) > 0 {
		return "", &InternalError{Err: fmt.Errorf("no candidate interface returned attributes for %s", url)}
	}
	return "", nil
}

type sendOutcome struct {
	pdu PDU
	err error
}

// sendAll fans data out to every configured interface in parallel via an
// errgroup, and returns the first reply whose error-code is zero,
// cancelling stragglers the instant it arrives. If at least one interface
// replied but none succeeded, the last observed non-zero error-code is
// surfaced; if none replied at all, the last transport error is
// surfaced as InternalError.
func (c *Client) sendAll(parent context.Context, data []byte) (PDU, error) {
	ctx, cancel := context.WithTimeout(parent, aggregateTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan sendOutcome, len(c.cfg.IPAddrs))

	for _, ip := range c.cfg.IPAddrs {
		ip := ip
		g.Go(func() error {
			pdu, err := c.send(gctx, ip, data)
			select {
			case results <- sendOutcome{pdu: pdu, err: err}:
			case <-gctx.Done():
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	var lastErr error
	var lastCode uint16
	sawReply := false

	for o := range results {
		if o.err != nil {
			lastErr = o.err
			continue
		}
		code, ok := errorCodeOf(o.pdu)
		if !ok {
			lastErr = fmt.Errorf("unexpected reply function-id %d", o.pdu.FunctionID())
			continue
		}
		sawReply = true
		if code == 0 {
			cancel() // release stragglers; their sockets close via send's deferred Close
			return o.pdu, nil
		}
		lastCode = code
	}

	if sawReply {
		return nil, &SLPError{Code: lastCode}
	}
	return nil, &InternalError{Err: lastErr}
}

func errorCodeOf(pdu PDU) (uint16, bool) {
	switch p := pdu.(type) {
	case *ServiceAcknowledge:
		return p.ErrorCode, true
	case *ServiceReply:
		return p.ErrorCode, true
	case *AttributeReply:
		return p.ErrorCode, true
	default:
		return 0, false
	}
}

// send opens a fresh sender socket, transmits once, and waits (bounded)
// for the first decodable reply on that same socket. It polls
// ctx.Done() on a short interval rather than blocking for the full
// timeout, so cancellation from sendAll's first-success path takes
// effect promptly.
func (c *Client) send(ctx context.Context, ip net.IP, data []byte) (PDU, error) {
	sender, err := NewSender(ip, 0, c.log)
	if err != nil {
		return nil, &InterfaceError{Interface: ip.String(), Err: err}
	}
	defer sender.Close()

	addr := &net.UDPAddr{IP: c.cfg.McastGroup, Port: c.cfg.McastPort}
	if err := sender.SendTo(data, addr); err != nil {
		return nil, &InternalError{Err: err}
	}

	deadline := time.Now().Add(perInterfaceTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return nil, &InternalError{Err: ctx.Err()}
		default:
		}
		if !time.Now().Before(deadline) {
			return nil, &InternalError{Err: fmt.Errorf("timed out waiting for reply on %s", ip)}
		}

		readDeadline := time.Now().Add(pollInterval)
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		_ = sender.SetReadDeadline(readDeadline)

		n, _, err := sender.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return nil, &InternalError{Err: err}
		}

		pdu, err := ParsePDU(buf[:n])
		if err != nil {
			c.log.Debug("dropped malformed reply", "interface", ip, "err", err)
			continue
		}
		return pdu, nil
	}
}
