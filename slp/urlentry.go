package slp

import "fmt"

// URLEntry is the structure embedded in registration, deregistration, and
// reply PDUs.
type URLEntry struct {
	Lifetime uint16
	URL      string
}

// encodeURLEntry serializes e: 1 reserved byte, 16-bit lifetime, 16-bit
// url-length, url octets, 1 trailing auth-count byte (always 0 here, since
// this module never generates authenticators).
func encodeURLEntry(e URLEntry) []byte {
	urlBytes := []byte(e.URL)
	buf := make([]byte, 0, 6+len(urlBytes))
	buf = append(buf, 0) // reserved
	buf = append(buf, byte(e.Lifetime>>8), byte(e.Lifetime))
	buf = append(buf, byte(len(urlBytes)>>8), byte(len(urlBytes)))
	buf = append(buf, urlBytes...)
	buf = append(buf, 0) // auth-block count
	return buf
}

// decodeURLEntry parses a URL-entry starting at data[0] and returns it
// along with the number of bytes it occupies. Authenticators are never
// generated by this module and their internal structure is not decoded;
// a nonzero auth-block count makes it impossible to safely locate
// whatever follows, so it is rejected as malformed rather than guessed at.
func decodeURLEntry(data []byte) (URLEntry, int, error) {
	if len(data) < 5 {
		return URLEntry{}, 0, fmt.Errorf("%w: url-entry shorter than fixed fields", ErrMalformedPDU)
	}

	lifetime := uint16(data[1])<<8 | uint16(data[2])
	urlLen := int(uint16(data[3])<<8 | uint16(data[4]))

	end := 5 + urlLen
	if end >= len(data) {
		return URLEntry{}, 0, fmt.Errorf("%w: url-entry url-length %d exceeds buffer", ErrMalformedPDU, urlLen)
	}
	url := string(data[5:end])
	authCount := data[end]
	if authCount != 0 {
		return URLEntry{}, 0, fmt.Errorf("%w: url-entry carries %d url authenticators, unsupported", ErrMalformedPDU, authCount)
	}

	return URLEntry{Lifetime: lifetime, URL: url}, end + 1, nil
}
