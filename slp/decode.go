package slp

import "fmt"

// ParsePDU decodes the common header and then the function-specific body,
// returning one of the concrete PDU types. Trailing bytes beyond the
// header's declared length are ignored.
func ParsePDU(data []byte) (PDU, error) {
	hdr, hdrLen, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	body := data[hdrLen:]

	switch hdr.FunctionID {
	case FuncServiceRequest:
		return decodeServiceRequest(hdr, body)
	case FuncServiceReply:
		return decodeServiceReply(hdr, body)
	case FuncServiceRegistration:
		return decodeServiceRegistration(hdr, body)
	case FuncServiceDeregistration:
		return decodeServiceDeregistration(hdr, body)
	case FuncServiceAcknowledge:
		return decodeServiceAcknowledge(hdr, body)
	case FuncAttributeRequest:
		return decodeAttributeRequest(hdr, body)
	case FuncAttributeReply:
		return decodeAttributeReply(hdr, body)
	default:
		// decodeHeader already rejects function-ids outside 1..7, so this
		// is unreachable, but keep the codec honest if that range ever
		// changes out from under this switch.
		return nil, fmt.Errorf("%w: function-id %d", ErrUnknownFunction, hdr.FunctionID)
	}
}

func decodeServiceRequest(hdr Header, body []byte) (*ServiceRequest, error) {
	values, _, err := decodeStringList(body, 5)
	if err != nil {
		return nil, err
	}
	return &ServiceRequest{
		Hdr:                hdr,
		PreviousResponders: values[0],
		ServiceType:        values[1],
		ScopeList:          values[2],
		Predicate:          values[3],
		SPI:                values[4],
	}, nil
}

func decodeServiceReply(hdr Header, body []byte) (*ServiceReply, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: service reply shorter than fixed fields", ErrMalformedPDU)
	}
	errorCode := uint16(body[0])<<8 | uint16(body[1])
	count := int(uint16(body[2])<<8 | uint16(body[3]))

	pos := 4
	entries := make([]URLEntry, 0, count)
	for i := 0; i < count; i++ {
		entry, n, err := decodeURLEntry(body[pos:])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		pos += n
	}

	return &ServiceReply{Hdr: hdr, ErrorCode: errorCode, URLEntries: entries}, nil
}

func decodeServiceRegistration(hdr Header, body []byte) (*ServiceRegistration, error) {
	entry, n, err := decodeURLEntry(body)
	if err != nil {
		return nil, err
	}
	values, _, err := decodeStringList(body[n:], 3)
	if err != nil {
		return nil, err
	}
	return &ServiceRegistration{
		Hdr:         hdr,
		URLEntry:    entry,
		ServiceType: values[0],
		ScopeList:   values[1],
		AttrList:    values[2],
	}, nil
}

func decodeServiceDeregistration(hdr Header, body []byte) (*ServiceDeregistration, error) {
	values, n, err := decodeStringList(body, 1)
	if err != nil {
		return nil, err
	}
	entry, _, err := decodeURLEntry(body[n:])
	if err != nil {
		return nil, err
	}
	return &ServiceDeregistration{
		Hdr:       hdr,
		ScopeList: values[0],
		URLEntry:  entry,
	}, nil
}

func decodeServiceAcknowledge(hdr Header, body []byte) (*ServiceAcknowledge, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("%w: service acknowledge shorter than fixed fields", ErrMalformedPDU)
	}
	errorCode := uint16(body[0])<<8 | uint16(body[1])
	return &ServiceAcknowledge{Hdr: hdr, ErrorCode: errorCode}, nil
}

func decodeAttributeRequest(hdr Header, body []byte) (*AttributeRequest, error) {
	values, _, err := decodeStringList(body, 5)
	if err != nil {
		return nil, err
	}
	return &AttributeRequest{
		Hdr:                hdr,
		PreviousResponders: values[0],
		URL:                values[1],
		ScopeList:          values[2],
		TagList:            values[3],
		SPI:                values[4],
	}, nil
}

func decodeAttributeReply(hdr Header, body []byte) (*AttributeReply, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: attribute reply shorter than fixed fields", ErrMalformedPDU)
	}
	errorCode := uint16(body[0])<<8 | uint16(body[1])
	attrLen := int(uint16(body[2])<<8 | uint16(body[3]))
	if 4+attrLen > len(body) {
		return nil, fmt.Errorf("%w: attribute reply attr-list length %d exceeds buffer", ErrMalformedPDU, attrLen)
	}
	attrList := string(body[4 : 4+attrLen])
	return &AttributeReply{Hdr: hdr, ErrorCode: errorCode, AttrList: attrList}, nil
}
