package slp

import "testing"

func TestErrorCodeOfRecognizedTypes(t *testing.T) {
	cases := []struct {
		name string
		pdu  PDU
		code uint16
		ok   bool
	}{
		{"ack", &ServiceAcknowledge{ErrorCode: 5}, 5, true},
		{"reply", &ServiceReply{ErrorCode: 9}, 9, true},
		{"attrReply", &AttributeReply{ErrorCode: 0}, 0, true},
		{"request", &ServiceRequest{}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, ok := errorCodeOf(tc.pdu)
			if ok != tc.ok || code != tc.code {
				t.Errorf("errorCodeOf(%T) = (%d, %v), want (%d, %v)", tc.pdu, code, ok, tc.code, tc.ok)
			}
		})
	}
}

func TestClientConfigDefaults(t *testing.T) {
	cfg := ClientConfig{}
	cfg.withDefaults()
	if cfg.McastPort != 427 {
		t.Errorf("McastPort = %d, want 427", cfg.McastPort)
	}
	if cfg.McastGroup == nil || cfg.McastGroup.String() != "239.255.255.253" {
		t.Errorf("McastGroup = %v", cfg.McastGroup)
	}
	if cfg.Scope != "DEFAULT" {
		t.Errorf("Scope = %q, want DEFAULT", cfg.Scope)
	}
	if cfg.Logger == nil {
		t.Error("expected default logger")
	}
}
