package slp

import "testing"

func TestEncodeDecodeURLEntryRoundTrip(t *testing.T) {
	entry := URLEntry{Lifetime: 300, URL: "service:x://a.com"}
	buf := encodeURLEntry(entry)

	got, n, err := decodeURLEntry(buf)
	if err != nil {
		t.Fatalf("decodeURLEntry: %v", err)
	}
	if n != len(buf) {
		t.Errorf("consumed %d bytes, want %d", n, len(buf))
	}
	if got != entry {
		t.Errorf("decoded %+v, want %+v", got, entry)
	}
}

func TestEncodeDecodeURLEntryEmptyURL(t *testing.T) {
	entry := URLEntry{Lifetime: 0, URL: ""}
	buf := encodeURLEntry(entry)
	got, _, err := decodeURLEntry(buf)
	if err != nil {
		t.Fatalf("decodeURLEntry: %v", err)
	}
	if got != entry {
		t.Errorf("decoded %+v, want %+v", got, entry)
	}
}

func TestDecodeURLEntryRejectsNonzeroAuthCount(t *testing.T) {
	buf := encodeURLEntry(URLEntry{Lifetime: 1, URL: "x"})
	buf[len(buf)-1] = 1
	if _, _, err := decodeURLEntry(buf); err == nil {
		t.Fatal("expected error on nonzero auth-block count")
	}
}

func TestDecodeURLEntryRejectsShortBuffer(t *testing.T) {
	if _, _, err := decodeURLEntry([]byte{0, 0}); err == nil {
		t.Fatal("expected error on short buffer")
	}
}

func TestDecodeURLEntryRejectsOversizeURLLength(t *testing.T) {
	buf := []byte{0, 0, 0, 0xff, 0xff}
	if _, _, err := decodeURLEntry(buf); err == nil {
		t.Fatal("expected error on url-length exceeding buffer")
	}
}
