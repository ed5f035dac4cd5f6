package slp

import (
	"fmt"

	"github.com/google/uuid"
)

// SLPv2 function-ids implemented by this module.
const (
	FuncServiceRequest        uint8 = 1
	FuncServiceReply          uint8 = 2
	FuncServiceRegistration   uint8 = 3
	FuncServiceDeregistration uint8 = 4
	FuncServiceAcknowledge    uint8 = 5
	FuncAttributeRequest      uint8 = 6
	FuncAttributeReply        uint8 = 7
)

// Version is the only SLPv2 protocol version this codec accepts.
const Version uint8 = 2

// FlagFresh is the OFR flags-byte value set on registrations and requests.
const FlagFresh byte = 0x40

// DefaultLanguageTag is used whenever a caller does not supply one.
const DefaultLanguageTag = "en"

// headerFixedLen is the length of the common header up to, but not
// including, the language-tag octets.
const headerFixedLen = 14

// NoExpiry is the URL-entry lifetime value meaning "never expires".
const NoExpiry uint16 = 65535

// maxPDULength is the largest value the 24-bit length field can hold.
const maxPDULength = 1<<24 - 1

// Header is the SLPv2 common header.
type Header struct {
	Version     uint8
	FunctionID  uint8
	Length      uint32
	Flags       byte
	XID         uint16
	LanguageTag string
}

// deriveXID produces a transaction id from a fresh UUID's clock-sequence
// bytes. A version-1 (time-based) UUID is preferred
// since its clock sequence is in play for exactly this purpose; if the
// host cannot produce one (e.g. no usable hardware address) a random
// UUID is used instead — its bytes 8-9 serve the same role of producing
// an unpredictable 16-bit value.
func deriveXID() uint16 {
	id, err := uuid.NewUUID()
	if err != nil {
		id = uuid.New()
	}
	b := id[:]
	return uint16(b[8])<<8 | uint16(b[9])
}

// encodeHeader builds the 14-byte common header plus language-tag octets.
// If xid is nil a fresh one is derived. If lang is empty, DefaultLanguageTag
// is used. bodyLen is the length, in octets, of the function-specific body
// that will follow the returned bytes.
func encodeHeader(functionID uint8, bodyLen int, flags byte, xid *uint16, lang string) ([]byte, uint16, error) {
	if lang == "" {
		lang = DefaultLanguageTag
	}
	langBytes := []byte(lang)
	total := headerFixedLen + len(langBytes) + bodyLen
	if total > maxPDULength {
		return nil, 0, fmt.Errorf("%w: total length %d exceeds 24-bit field", ErrMalformedPDU, total)
	}

	var x uint16
	if xid != nil {
		x = *xid
	} else {
		x = deriveXID()
	}

	buf := make([]byte, headerFixedLen, total)
	buf[0] = Version
	buf[1] = functionID
	buf[2] = byte(total >> 16)
	buf[3] = byte(total >> 8)
	buf[4] = byte(total)
	buf[5] = flags
	buf[6], buf[7], buf[8] = 0, 0, 0
	buf[9] = 0
	buf[10] = byte(x >> 8)
	buf[11] = byte(x)
	buf[12] = byte(len(langBytes) >> 8)
	buf[13] = byte(len(langBytes))
	buf = append(buf, langBytes...)

	return buf, x, nil
}

// decodeHeader parses the common header from data and returns the header
// plus the number of bytes it occupies (14 + language-tag length), so the
// caller can locate the start of the function-specific body.
func decodeHeader(data []byte) (Header, int, error) {
	if len(data) < headerFixedLen {
		return Header{}, 0, fmt.Errorf("%w: buffer shorter than fixed header", ErrMalformedPDU)
	}

	version := data[0]
	if version != Version {
		return Header{}, 0, fmt.Errorf("%w: version %d", ErrMalformedPDU, version)
	}

	functionID := data[1]
	if functionID < FuncServiceRequest || functionID > FuncAttributeReply {
		return Header{}, 0, fmt.Errorf("%w: function-id %d: %w", ErrMalformedPDU, functionID, ErrUnknownFunction)
	}

	length := uint32(data[2])<<16 | uint32(data[3])<<8 | uint32(data[4])
	flags := data[5]
	xid := uint16(data[10])<<8 | uint16(data[11])
	langLen := int(uint16(data[12])<<8 | uint16(data[13]))

	headerLen := headerFixedLen + langLen
	if headerLen > len(data) {
		return Header{}, 0, fmt.Errorf("%w: language-tag length %d exceeds buffer", ErrMalformedPDU, langLen)
	}
	if int(length) > len(data) {
		return Header{}, 0, fmt.Errorf("%w: declared length %d exceeds buffer of %d", ErrMalformedPDU, length, len(data))
	}

	lang := string(data[headerFixedLen:headerLen])

	return Header{
		Version:     version,
		FunctionID:  functionID,
		Length:      length,
		Flags:       flags,
		XID:         xid,
		LanguageTag: lang,
	}, headerLen, nil
}
