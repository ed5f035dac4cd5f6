package slp

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	xid := uint16(1234)
	buf, x, err := encodeHeader(FuncServiceRequest, 10, FlagFresh, &xid, "en")
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	if x != xid {
		t.Fatalf("returned xid = %d, want %d", x, xid)
	}
	buf = append(buf, make([]byte, 10)...)

	hdr, n, err := decodeHeader(buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}
	if n != headerFixedLen+2 {
		t.Errorf("header length = %d, want %d", n, headerFixedLen+2)
	}
	if hdr.Version != Version || hdr.FunctionID != FuncServiceRequest || hdr.Flags != FlagFresh || hdr.XID != xid || hdr.LanguageTag != "en" {
		t.Errorf("decoded header = %+v", hdr)
	}
}

func TestEncodeHeaderDerivesXIDWhenNil(t *testing.T) {
	buf, x, err := encodeHeader(FuncServiceAcknowledge, 2, 0, nil, "")
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	gotXID := uint16(buf[10])<<8 | uint16(buf[11])
	if gotXID != x {
		t.Errorf("header xid bytes = %d, returned xid = %d", gotXID, x)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	if _, _, err := decodeHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error on short buffer")
	}
}

func TestDecodeHeaderRejectsBadVersion(t *testing.T) {
	buf, _, err := encodeHeader(FuncServiceRequest, 0, 0, nil, "en")
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	buf[0] = 1
	if _, _, err := decodeHeader(buf); err == nil {
		t.Fatal("expected error on bad version")
	}
}

func TestDecodeHeaderRejectsUnknownFunctionID(t *testing.T) {
	buf, _, err := encodeHeader(FuncServiceRequest, 0, 0, nil, "en")
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	buf[1] = 9
	if _, _, err := decodeHeader(buf); err == nil {
		t.Fatal("expected error on unknown function-id")
	}
}

func TestEncodeHeaderRejectsOversizeLength(t *testing.T) {
	if _, _, err := encodeHeader(FuncServiceRequest, maxPDULength, 0, nil, "en"); err == nil {
		t.Fatal("expected error on oversize total length")
	}
}

func TestScenario1RegistrationDecode(t *testing.T) {
	data := mustHex(t,
		"02 03 00 00 52 40 00 00 00 00 55 49 00 02 65 6e"+
			" 00 00 0f 00 17 73 65 72 76 69 63 65 3a 74 65 73 74 3a 2f 2f"+
			" 74 65 73 74 2e 63 6f 6d 00 00 0c 73 65 72 76 69 63 65 3a 74"+
			" 65 73 74 00 05 61 6e 61 70 61 00 0d 28 61 74 74 72 3d 27 74"+
			" 65 73 74 27 29 00")

	pdu, err := ParsePDU(data)
	if err != nil {
		t.Fatalf("ParsePDU: %v", err)
	}
	reg, ok := pdu.(*ServiceRegistration)
	if !ok {
		t.Fatalf("decoded %T, want *ServiceRegistration", pdu)
	}

	hdr := reg.Header()
	if hdr.Version != 2 || hdr.FunctionID != 3 || hdr.Length != 82 || hdr.XID != 21833 || hdr.LanguageTag != "en" {
		t.Errorf("header = %+v", hdr)
	}
	if reg.URLEntry.Lifetime != 15 || reg.URLEntry.URL != "service:test://test.com" {
		t.Errorf("url-entry = %+v", reg.URLEntry)
	}
	if reg.ServiceType != "service:test" || reg.ScopeList != "anapa" || reg.AttrList != "(attr='test')" {
		t.Errorf("registration = %+v", reg)
	}
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	var out []byte
	var hi byte
	have := false
	for _, r := range s {
		var v byte
		switch {
		case r >= '0' && r <= '9':
			v = byte(r - '0')
		case r >= 'a' && r <= 'f':
			v = byte(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v = byte(r-'A') + 10
		default:
			continue
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	if have {
		t.Fatalf("odd number of hex digits in %q", s)
	}
	return out
}

func TestMustHexSanity(t *testing.T) {
	if got := mustHex(t, "02 03"); !bytes.Equal(got, []byte{0x02, 0x03}) {
		t.Fatalf("mustHex = %x", got)
	}
}
