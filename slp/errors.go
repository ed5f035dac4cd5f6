// Package slp implements the Service Location Protocol version 2 (RFC 2608)
// subset used by the directory agent and client in this module: PDU codec,
// multicast transport, registry, daemon dispatch, and client fan-out.
package slp

import (
	"errors"
	"fmt"
)

// Sentinel errors for local (non-peer) failure conditions.
var (
	// ErrMalformedPDU is returned by the codec when a buffer cannot be
	// decoded as a well-formed SLPv2 PDU.
	ErrMalformedPDU = errors.New("slp: malformed pdu")

	// ErrScopeMismatch names the condition of an incoming PDU's
	// scope-list not matching the daemon's configured scope. The daemon
	// does not return it: it checks the scope inline and silently drops
	// such PDUs without a reply.
	ErrScopeMismatch = errors.New("slp: scope mismatch")

	// ErrUnknownFunction is returned when a header names a function-id
	// outside 1..7.
	ErrUnknownFunction = errors.New("slp: unknown function-id")
)

// SLPError wraps a non-zero SLPv2 error-code returned by a peer in a
// ServiceAcknowledge, ServiceReply, or AttributeReply PDU.
type SLPError struct {
	Code uint16
}

func (e *SLPError) Error() string {
	return fmt.Sprintf("slp: peer returned error code %d", e.Code)
}

// InternalError wraps a local transport or timeout failure that left the
// caller with no usable reply.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "slp: internal error"
	}
	return fmt.Sprintf("slp: internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// InterfaceError is returned when a listener or sender could not be
// created on a given local interface.
type InterfaceError struct {
	Interface string
	Err       error
}

func (e *InterfaceError) Error() string {
	return fmt.Sprintf("slp: interface %s: %v", e.Interface, e.Err)
}

func (e *InterfaceError) Unwrap() error { return e.Err }
