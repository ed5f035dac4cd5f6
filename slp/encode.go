package slp

// Each Encode* function builds the wire bytes for one PDU type. The
// request encoders (ServiceRequest, ServiceRegistration,
// ServiceDeregistration, AttributeRequest) take xid as a pointer, nil
// requesting a fresh one, and return the XID they used (either the one
// passed in, or a freshly derived one), so callers that need to log or
// correlate by XID don't have to re-derive it. The reply encoders
// (ServiceReply, ServiceAcknowledge, AttributeReply) take the request's
// XID by value and do not return it.

// EncodeServiceRequest encodes function-id 1. OFR=FlagFresh.
func EncodeServiceRequest(xid *uint16, lang, serviceType, scopeList string) ([]byte, uint16, error) {
	body := encodeStringList("", serviceType, scopeList, "", "")
	header, x, err := encodeHeader(FuncServiceRequest, len(body), FlagFresh, xid, lang)
	if err != nil {
		return nil, 0, err
	}
	return append(header, body...), x, nil
}

// EncodeServiceReply encodes function-id 2. OFR=0.
func EncodeServiceReply(xid uint16, lang string, errorCode uint16, entries []URLEntry) ([]byte, error) {
	body := make([]byte, 4)
	body[0], body[1] = byte(errorCode>>8), byte(errorCode)
	body[2], body[3] = byte(uint16(len(entries))>>8), byte(uint16(len(entries)))
	for _, e := range entries {
		body = append(body, encodeURLEntry(e)...)
	}
	header, _, err := encodeHeader(FuncServiceReply, len(body), 0, &xid, lang)
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

// EncodeServiceRegistration encodes function-id 3. OFR=FlagFresh.
func EncodeServiceRegistration(xid *uint16, lang string, entry URLEntry, serviceType, scopeList, attrList string) ([]byte, uint16, error) {
	body := encodeURLEntry(entry)
	body = append(body, encodeStringList(serviceType, scopeList, attrList)...)
	body = append(body, 0) // auth-block count
	header, x, err := encodeHeader(FuncServiceRegistration, len(body), FlagFresh, xid, lang)
	if err != nil {
		return nil, 0, err
	}
	return append(header, body...), x, nil
}

// EncodeServiceDeregistration encodes function-id 4. OFR=0. entry.Lifetime
// is conventionally 0 for a deregistration.
func EncodeServiceDeregistration(xid *uint16, lang, scopeList string, entry URLEntry) ([]byte, uint16, error) {
	body := encodeStringList(scopeList)
	body = append(body, encodeURLEntry(entry)...)
	body = append(body, 0, 0) // tag-list length = 0
	header, x, err := encodeHeader(FuncServiceDeregistration, len(body), 0, xid, lang)
	if err != nil {
		return nil, 0, err
	}
	return append(header, body...), x, nil
}

// EncodeServiceAcknowledge encodes function-id 5. OFR=0.
func EncodeServiceAcknowledge(xid uint16, lang string, errorCode uint16) ([]byte, error) {
	body := []byte{byte(errorCode >> 8), byte(errorCode)}
	header, _, err := encodeHeader(FuncServiceAcknowledge, len(body), 0, &xid, lang)
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

// EncodeAttributeRequest encodes function-id 6. OFR=FlagFresh.
func EncodeAttributeRequest(xid *uint16, lang, url, scopeList string) ([]byte, uint16, error) {
	body := encodeStringList("", url, scopeList, "", "")
	header, x, err := encodeHeader(FuncAttributeRequest, len(body), FlagFresh, xid, lang)
	if err != nil {
		return nil, 0, err
	}
	return append(header, body...), x, nil
}

// EncodeAttributeReply encodes function-id 7. OFR=0.
func EncodeAttributeReply(xid uint16, lang string, errorCode uint16, attrList string) ([]byte, error) {
	attrBytes := []byte(attrList)
	body := make([]byte, 0, 4+len(attrBytes)+1)
	body = append(body, byte(errorCode>>8), byte(errorCode))
	body = append(body, byte(uint16(len(attrBytes))>>8), byte(uint16(len(attrBytes))))
	body = append(body, attrBytes...)
	body = append(body, 0) // auth-block count
	header, _, err := encodeHeader(FuncAttributeReply, len(body), 0, &xid, lang)
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}
