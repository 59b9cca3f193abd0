// Package cookiejar implements a domain/path-scoped cookie store with
// expiry, session-only classification, Set-Cookie parsing, and TSV
// persistence (spec §4.C). It intentionally does not use net/http/cookiejar:
// that implementation does not expose session-only override per cookie name,
// nor a way to serialize the jar to the TAB-separated format this client
// lineage's on-disk caches share with its sibling components.
package cookiejar

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sessionOnlyNames is the closed set of cookie names that are always
// treated as session-only regardless of server-sent attributes (spec §3,
// §9 "Session-only cookie discrimination").
var sessionOnlyNames = map[string]bool{
	"sid":  true,
	"DMDM": true,
	"MDMD": true,
}

// StoredCookie is one entry in the jar.
type StoredCookie struct {
	Name        string
	Value       string
	Domain      string
	Path        string
	Expires     time.Time // zero means "no explicit expiry"
	HasExpires  bool
	Secure      bool
	SessionOnly bool
}

type cookieKey struct {
	domain string
	path   string
	name   string
}

// Jar is a domain/path-scoped cookie store. Safe for concurrent use: every
// mutation is a single critical section, matching the "atomic from the
// caller's perspective" requirement of spec §5.
type Jar struct {
	mu      sync.Mutex
	entries map[cookieKey]StoredCookie
	order   []cookieKey // insertion order, for stable BuildCookieHeader output
}

// New creates an empty Jar.
func New() *Jar {
	return &Jar{entries: make(map[cookieKey]StoredCookie)}
}

func keyOf(c StoredCookie) cookieKey {
	return cookieKey{domain: c.Domain, path: c.Path, name: c.Name}
}

// SetCookie inserts c, replacing any existing entry with the same
// (domain, path, name) key. SessionOnly is forced true when Name is in the
// known session-only set, regardless of the caller-supplied value.
func (j *Jar) SetCookie(c StoredCookie) {
	if sessionOnlyNames[c.Name] {
		c.SessionOnly = true
	}
	k := keyOf(c)
	j.mu.Lock()
	if _, exists := j.entries[k]; !exists {
		j.order = append(j.order, k)
	}
	j.entries[k] = c
	j.mu.Unlock()
}

// RemoveCookie deletes the cookie identified by (name, domain, path), if any.
func (j *Jar) RemoveCookie(name, domain, path string) {
	k := cookieKey{domain: domain, path: path, name: name}
	j.mu.Lock()
	if _, ok := j.entries[k]; ok {
		delete(j.entries, k)
		for i, e := range j.order {
			if e == k {
				j.order = append(j.order[:i], j.order[i+1:]...)
				break
			}
		}
	}
	j.mu.Unlock()
}

// GetCookie returns the cookie named name that matches domain (ignoring
// path), if present and not expired.
func (j *Jar) GetCookie(name, domain string) (StoredCookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	for _, k := range j.order {
		if k.name != name {
			continue
		}
		c := j.entries[k]
		if c.HasExpires && c.Expires.Before(now) {
			continue
		}
		if domainMatches(c.Domain, domain) {
			return c, true
		}
	}
	return StoredCookie{}, false
}

// domainMatches implements spec §4.C's domain-matching rule: a cookie with
// domain d matches request host h iff d == h, or d starts with "." and
// (h == d[1:] or h ends with d), or h == d, or h ends with "."+d.
func domainMatches(d, h string) bool {
	d = strings.ToLower(d)
	h = strings.ToLower(h)
	if d == h {
		return true
	}
	if strings.HasPrefix(d, ".") {
		bare := d[1:]
		if h == bare || strings.HasSuffix(h, d) {
			return true
		}
	}
	if strings.HasSuffix(h, "."+d) {
		return true
	}
	return false
}

// pathMatches implements spec §4.C's path-matching rule: "/" matches all
// paths; otherwise requestPath must start with cookiePath.
func pathMatches(cookiePath, requestPath string) bool {
	if cookiePath == "" || cookiePath == "/" {
		return true
	}
	return strings.HasPrefix(requestPath, cookiePath)
}

// BuildCookieHeader concatenates all cookies matching u's host and path,
// skipping expired ones, as "n1=v1; n2=v2; …" in insertion order.
func (j *Jar) BuildCookieHeader(u *url.URL) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	var parts []string
	for _, k := range j.order {
		c := j.entries[k]
		if c.HasExpires && c.Expires.Before(now) {
			continue
		}
		if !domainMatches(c.Domain, u.Hostname()) {
			continue
		}
		if !pathMatches(c.Path, u.Path) {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// ParseSetCookieHeader parses the raw Set-Cookie header lines delivered by
// the HTTP component for requestURL, storing every cookie in the jar.
// Recognised attributes: Domain, Path, Expires (HTTP-date), Max-Age
// (seconds from now), Secure. Missing Domain/Path default to requestURL's
// host/path.
func (j *Jar) ParseSetCookieHeader(rawLines []string, requestURL *url.URL) {
	header := http.Header{}
	for _, line := range rawLines {
		header.Add("Set-Cookie", line)
	}
	resp := http.Response{Header: header}
	for _, rc := range resp.Cookies() {
		stored := StoredCookie{
			Name:   rc.Name,
			Value:  rc.Value,
			Domain: rc.Domain,
			Path:   rc.Path,
			Secure: rc.Secure,
		}
		if stored.Domain == "" {
			stored.Domain = requestURL.Hostname()
		}
		if stored.Path == "" {
			stored.Path = defaultPath(requestURL.Path)
		}
		if rc.MaxAge != 0 {
			stored.HasExpires = true
			stored.Expires = time.Now().Add(time.Duration(rc.MaxAge) * time.Second)
		} else if !rc.Expires.IsZero() {
			stored.HasExpires = true
			stored.Expires = rc.Expires
		}
		j.SetCookie(stored)
	}
}

func defaultPath(requestPath string) string {
	if i := strings.LastIndex(requestPath, "/"); i > 0 {
		return requestPath[:i]
	}
	return "/"
}

// Save persists all non-session, non-expired cookies to filename as
// TAB-separated rows: domain, path, name, value, expiresISO, {0|1} (secure).
// The write is atomic (temp file + rename).
func (j *Jar) Save(filename string) error {
	j.mu.Lock()
	var lines []string
	now := time.Now()
	for _, k := range j.order {
		c := j.entries[k]
		if c.SessionOnly {
			continue
		}
		if c.HasExpires && c.Expires.Before(now) {
			continue
		}
		expiresISO := ""
		if c.HasExpires {
			expiresISO = c.Expires.UTC().Format(time.RFC3339)
		}
		secureFlag := "0"
		if c.Secure {
			secureFlag = "1"
		}
		lines = append(lines, strings.Join([]string{
			c.Domain, c.Path, c.Name, c.Value, expiresISO, secureFlag,
		}, "\t"))
	}
	j.mu.Unlock()

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("cookiejar: write temp file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("cookiejar: rename temp file: %w", err)
	}
	return nil
}

// Load replaces the jar's contents with cookies read from filename.
// Malformed lines are skipped.
func (j *Jar) Load(filename string) error {
	f, err := os.Open(filename) // #nosec G304 -- filename is an operator-supplied cache path
	if err != nil {
		return fmt.Errorf("cookiejar: open %q: %w", filename, err)
	}
	defer f.Close()

	entries := make(map[cookieKey]StoredCookie)
	var order []cookieKey

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 6 {
			continue
		}
		c := StoredCookie{
			Domain: fields[0],
			Path:   fields[1],
			Name:   fields[2],
			Value:  fields[3],
		}
		if fields[4] != "" {
			t, err := time.Parse(time.RFC3339, fields[4])
			if err == nil {
				c.HasExpires = true
				c.Expires = t
			}
		}
		c.Secure = fields[5] == "1"
		if sessionOnlyNames[c.Name] {
			c.SessionOnly = true
		}
		k := keyOf(c)
		if _, exists := entries[k]; !exists {
			order = append(order, k)
		}
		entries[k] = c
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cookiejar: read %q: %w", filename, err)
	}

	j.mu.Lock()
	j.entries = entries
	j.order = order
	j.mu.Unlock()
	return nil
}

// Count returns the number of cookies currently stored, including expired
// and session-only entries — useful for dashboard-style introspection.
func (j *Jar) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// List returns every stored cookie in insertion order, for the
// cookie:list RPC channel.
func (j *Jar) List() []StoredCookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]StoredCookie, 0, len(j.order))
	for _, k := range j.order {
		out = append(out, j.entries[k])
	}
	return out
}

// Clear removes every stored cookie.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = make(map[cookieKey]StoredCookie)
	j.order = nil
}

// ParseInt is a small helper for callers parsing Max-Age-style integer
// attributes outside of the standard cookie grammar (e.g. INI files that
// embed a cookie max-age).
func ParseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
