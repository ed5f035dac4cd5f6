package slp

import "fmt"

// encodeStringList writes each string as a 16-bit big-endian length
// followed by its octets, in order.
func encodeStringList(values ...string) []byte {
	var buf []byte
	for _, v := range values {
		b := []byte(v)
		buf = append(buf, byte(len(b)>>8), byte(len(b)))
		buf = append(buf, b...)
	}
	return buf
}

// decodeStringList reads exactly n length-prefixed strings starting at
// data[0] and returns them along with the number of bytes consumed.
func decodeStringList(data []byte, n int) ([]string, int, error) {
	values := make([]string, 0, n)
	pos := 0
	for i := 0; i < n; i++ {
		if pos+2 > len(data) {
			return nil, 0, fmt.Errorf("%w: string %d of %d: length prefix exceeds buffer", ErrMalformedPDU, i, n)
		}
		l := int(uint16(data[pos])<<8 | uint16(data[pos+1]))
		pos += 2
		if pos+l > len(data) {
			return nil, 0, fmt.Errorf("%w: string %d of %d: length %d exceeds buffer", ErrMalformedPDU, i, n, l)
		}
		values = append(values, string(data[pos:pos+l]))
		pos += l
	}
	return values, pos, nil
}
