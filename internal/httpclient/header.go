package httpclient

import "net/http"

// headerEntry stores a single header key/value pair with its original casing.
type headerEntry struct {
	key   string
	value string
}

// OrderedHeader is a drop-in companion to http.Header that preserves the
// exact capitalisation and insertion order of HTTP headers.
//
// Unlike http.Header (a map[string][]string, therefore unordered),
// OrderedHeader stores entries in a slice so iteration always returns them in
// the order they were added. Monazilla-lineage BBS clients (2ch browsers)
// send a fixed, low-casing header set whose order some boards use to tell a
// real client from a scripted one; a plain http.Header cannot reproduce that.
//
// OrderedHeader is not safe for concurrent use; each Request builds its own
// before the goroutine issuing it runs, so no locking is needed.
type OrderedHeader struct {
	entries []headerEntry
}

// Add appends key/value, preserving key's exact casing. Repeated calls with
// the same key produce multiple entries (as http.Header.Add would).
func (h *OrderedHeader) Add(key, value string) {
	h.entries = append(h.entries, headerEntry{key: key, value: value})
}

// ApplyToRequest writes every entry into req.Header, preserving each key's
// casing, replacing whatever headers req already carries. req.Header is a
// map, so the order of the entries is not kept.
func (h *OrderedHeader) ApplyToRequest(req *http.Request) {
	req.Header = make(http.Header, len(h.entries))
	for _, e := range h.entries {
		req.Header[e.key] = append(req.Header[e.key], e.value)
	}
}

// monazillaHeaders returns the ordered base header set a Monazilla-lineage
// BBS client sends on every request, with userAgent as its identity string
// (spec's "Charset per family" section assumes board write permissions key
// off a Monazilla-style User-Agent).
func monazillaHeaders(userAgent string) *OrderedHeader {
	h := &OrderedHeader{}
	h.Add("User-Agent", userAgent)
	h.Add("Accept", "text/html, */*")
	h.Add("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")
	return h
}

// DefaultUserAgent is used when no Client.SetUserAgent override is set.
const DefaultUserAgent = "Monazilla/1.00 (VBBB/1.0)"
