package slp

import (
	"testing"
	"time"
)

func TestRegistryRegisterThenFind(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	now := time.Now()

	r.Register("127.0.0.1", "service:x", "DEFAULT", "", NoExpiry, "service:x://a.com", now)

	urls := r.FindURLs("127.0.0.1", "service:x")
	if len(urls) != 1 || urls[0].URL != "service:x://a.com" {
		t.Fatalf("FindURLs = %+v", urls)
	}
}

func TestRegistryDeregisterUnknownURLIsNoop(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	if r.Deregister("127.0.0.1", "service:x://missing") {
		t.Fatal("expected deregister of unknown url to report false")
	}
}

func TestRegistryRegisterThenDeregisterRestoresPriorState(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	now := time.Now()

	before := len(r.FindURLs("127.0.0.1", "service:x"))
	r.Register("127.0.0.1", "service:x", "DEFAULT", "", NoExpiry, "service:x://a.com", now)
	if !r.Deregister("127.0.0.1", "service:x://a.com") {
		t.Fatal("expected deregister to report true")
	}
	after := len(r.FindURLs("127.0.0.1", "service:x"))
	if before != after {
		t.Fatalf("registry not restored: before=%d after=%d", before, after)
	}
}

func TestRegistrySweepExpiresPastDeadline(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	t0 := time.Now()

	r.Register("127.0.0.1", "service:x", "DEFAULT", "", 1, "service:x://a.com", t0)

	expired := r.Sweep(t0.Add(2500 * time.Millisecond))
	if len(expired) != 1 || expired[0].URL != "service:x://a.com" {
		t.Fatalf("Sweep = %+v", expired)
	}
	if urls := r.FindURLs("127.0.0.1", "service:x"); len(urls) != 0 {
		t.Fatalf("expected record removed after sweep, got %+v", urls)
	}
}

func TestRegistryImmortalEntrySurvivesSweep(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	t0 := time.Now()

	r.Register("127.0.0.1", "service:x", "DEFAULT", "", NoExpiry, "service:x://a.com", t0)
	r.Sweep(t0.Add(10 * time.Second))

	urls := r.FindURLs("127.0.0.1", "service:x")
	if len(urls) != 1 || urls[0].URL != "service:x://a.com" {
		t.Fatalf("expected immortal entry to survive, got %+v", urls)
	}
}

func TestRegistryFindAttrsRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	r.Register("127.0.0.1", "service:x", "DEFAULT", "(k1=v1),(k2=v2)", NoExpiry, "service:x://h", time.Now())

	if got := r.FindAttrs("127.0.0.1", "service:x://h"); got != "(k1=v1),(k2=v2)" {
		t.Fatalf("FindAttrs = %q", got)
	}
	if got := r.FindAttrs("127.0.0.1", "service:x://missing"); got != "" {
		t.Fatalf("FindAttrs for missing url = %q, want empty", got)
	}
}

func TestRegistryReplacementPrunesStaleServiceTypeIndex(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	now := time.Now()

	r.Register("127.0.0.1", "service:old", "DEFAULT", "", NoExpiry, "service:x://h", now)
	r.Register("127.0.0.1", "service:new", "DEFAULT", "", NoExpiry, "service:x://h", now)

	if urls := r.FindURLs("127.0.0.1", "service:old"); len(urls) != 0 {
		t.Fatalf("expected stale index pruned, got %+v", urls)
	}
	urls := r.FindURLs("127.0.0.1", "service:new")
	if len(urls) != 1 || urls[0].URL != "service:x://h" {
		t.Fatalf("FindURLs(service:new) = %+v", urls)
	}
}

func TestRegistryIndexConsistencyAfterRandomSequence(t *testing.T) {
	r := NewRegistry()
	r.AddInterface("127.0.0.1")
	now := time.Now()

	ops := []struct {
		register bool
		url      string
		svcType  string
	}{
		{true, "service:x://a", "service:x"},
		{true, "service:x://b", "service:x"},
		{false, "service:x://a", ""},
		{true, "service:x://a", "service:y"},
		{false, "service:x://b", ""},
	}
	for _, op := range ops {
		if op.register {
			r.Register("127.0.0.1", op.svcType, "DEFAULT", "", NoExpiry, op.url, now)
		} else {
			r.Deregister("127.0.0.1", op.url)
		}
	}

	for svcType, urls := range r.index["127.0.0.1"] {
		for url := range urls {
			rec, ok := r.records["127.0.0.1"][url]
			if !ok {
				t.Fatalf("index references url %q with no record", url)
			}
			if rec.ServiceType != svcType {
				t.Fatalf("index entry (%s, %s) but record service_type = %s", svcType, url, rec.ServiceType)
			}
		}
	}
}
