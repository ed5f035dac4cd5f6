package slp

import "time"

// Registration is one entry in the registry, keyed by (interface, url).
type Registration struct {
	ServiceType  string
	ScopeList    string
	AttrList     string
	Lifetime     uint16
	RegisteredAt time.Time
	Interface    string
}

// ExpiredEntry describes a registration removed by Sweep.
type ExpiredEntry struct {
	Interface string
	URL       string
}

// Registry is the per-interface directory of live registrations. It holds
// a single owning map plus a derived service-type index; it is not safe
// for concurrent use — it is exclusively mutated by the daemon's single
// dispatch goroutine, so no mutex is needed.
type Registry struct {
	// records[interface][url] -> *Registration
	records map[string]map[string]*Registration
	// index[interface][serviceType] -> set of url
	index map[string]map[string]map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]map[string]*Registration),
		index:   make(map[string]map[string]map[string]struct{}),
	}
}

// AddInterface ensures interface i has empty record and index maps, so
// later lookups on a freshly-joined interface return "no results" rather
// than needing nil checks everywhere.
func (r *Registry) AddInterface(i string) {
	if _, ok := r.records[i]; !ok {
		r.records[i] = make(map[string]*Registration)
	}
	if _, ok := r.index[i]; !ok {
		r.index[i] = make(map[string]map[string]struct{})
	}
}

// Register inserts or replaces the record for (i, url). If url was
// previously registered under a different service-type, the stale index
// entry is pruned.
func (r *Registry) Register(i, serviceType, scopeList, attrList string, lifetime uint16, url string, now time.Time) {
	r.AddInterface(i)

	if prev, ok := r.records[i][url]; ok && prev.ServiceType != serviceType {
		r.unindex(i, prev.ServiceType, url)
	}

	r.records[i][url] = &Registration{
		ServiceType:  serviceType,
		ScopeList:    scopeList,
		AttrList:     attrList,
		Lifetime:     lifetime,
		RegisteredAt: now,
		Interface:    i,
	}

	if _, ok := r.index[i][serviceType]; !ok {
		r.index[i][serviceType] = make(map[string]struct{})
	}
	r.index[i][serviceType][url] = struct{}{}
}

// Deregister removes the record for (i, url) if present, reporting whether
// it existed. It is a no-op, not an error, when the url is unknown.
func (r *Registry) Deregister(i, url string) bool {
	recs, ok := r.records[i]
	if !ok {
		return false
	}
	rec, ok := recs[url]
	if !ok {
		return false
	}
	r.unindex(i, rec.ServiceType, url)
	delete(recs, url)
	return true
}

// unindex removes url from the service-type index under (i, serviceType),
// and removes the service-type entry itself once it's empty.
func (r *Registry) unindex(i, serviceType, url string) {
	byType, ok := r.index[i]
	if !ok {
		return
	}
	urls, ok := byType[serviceType]
	if !ok {
		return
	}
	delete(urls, url)
	if len(urls) == 0 {
		delete(byType, serviceType)
	}
}

// FindURLs returns the urls registered under (i, serviceType), each with
// its current lifetime.
func (r *Registry) FindURLs(i, serviceType string) []URLEntry {
	urls, ok := r.index[i][serviceType]
	if !ok {
		return nil
	}
	entries := make([]URLEntry, 0, len(urls))
	for u := range urls {
		entries = append(entries, URLEntry{Lifetime: r.records[i][u].Lifetime, URL: u})
	}
	return entries
}

// FindAttrs returns the attr-list registered for (i, url), or "" if
// absent.
func (r *Registry) FindAttrs(i, url string) string {
	rec, ok := r.records[i][url]
	if !ok {
		return ""
	}
	return rec.AttrList
}

// Sweep removes every record whose lease has expired as of now
// (lifetime != NoExpiry and now is past registeredAt+lifetime), across
// every interface, and returns what was removed.
func (r *Registry) Sweep(now time.Time) []ExpiredEntry {
	var expired []ExpiredEntry
	for i, recs := range r.records {
		for url, rec := range recs {
			if rec.Lifetime == NoExpiry {
				continue
			}
			deadline := rec.RegisteredAt.Add(time.Duration(rec.Lifetime) * time.Second)
			if now.After(deadline) {
				expired = append(expired, ExpiredEntry{Interface: i, URL: url})
			}
		}
	}
	for _, e := range expired {
		r.Deregister(e.Interface, e.URL)
	}
	return expired
}
