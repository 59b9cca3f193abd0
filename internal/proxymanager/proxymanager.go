// Package proxymanager reads and writes the two-endpoint proxy configuration
// (spec §4.D) and hands out net/http dial agents for the "read" and "write"
// proxy modes used by the HTTP client.
package proxymanager

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"gopkg.in/ini.v1"
)

// Mode selects which of the two independent proxy endpoints a request uses.
type Mode int

const (
	// Read is used for GETs of menu/subject/DAT/profile.
	Read Mode = iota
	// Write is used for posts and login calls.
	Write
)

// Endpoint is one of the two proxy endpoints ("read" or "write").
type Endpoint struct {
	Enabled  bool
	Address  string
	Port     int
	UserID   string
	Password string
}

// Active reports whether this endpoint should be used: it must be enabled,
// carry a non-empty address, and a positive port.
func (e Endpoint) Active() bool {
	return e.Enabled && e.Address != "" && e.Port > 0
}

// url builds the proxy URL (with embedded basic-auth credentials, if any)
// suitable for http.ProxyURL.
func (e Endpoint) url() (*url.URL, error) {
	host := fmt.Sprintf("%s:%d", e.Address, e.Port)
	u := &url.URL{Scheme: "http", Host: host}
	if e.UserID != "" {
		u.User = url.UserPassword(e.UserID, e.Password)
	}
	return u, nil
}

// Manager holds the read and write proxy endpoints and is safe for
// concurrent use (mutations are serialized by a mutex, matching the
// teacher's ProxyManager discipline).
type Manager struct {
	mu    sync.RWMutex
	read  Endpoint
	write Endpoint
}

// New returns an empty Manager with both endpoints disabled.
func New() *Manager {
	return &Manager{}
}

// Load parses an INI file with sections [ReadProxy] and [WriteProxy],
// each carrying keys Proxy (bool), Address, Port, UserID, Password.
func (m *Manager) Load(filename string) error {
	cfg, err := ini.Load(filename)
	if err != nil {
		return fmt.Errorf("proxymanager: load %q: %w", filename, err)
	}

	read, err := parseEndpoint(cfg, "ReadProxy")
	if err != nil {
		return err
	}
	write, err := parseEndpoint(cfg, "WriteProxy")
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.read = read
	m.write = write
	m.mu.Unlock()
	return nil
}

func parseEndpoint(cfg *ini.File, section string) (Endpoint, error) {
	sec := cfg.Section(section)
	return Endpoint{
		Enabled:  sec.Key("Proxy").MustBool(false),
		Address:  sec.Key("Address").String(),
		Port:     sec.Key("Port").MustInt(0),
		UserID:   sec.Key("UserID").String(),
		Password: sec.Key("Password").String(),
	}, nil
}

// Save writes the current endpoints back to filename, preserving any
// sections Load did not recognize: the existing file is re-read with
// ini.LooseLoad (a missing file counts as empty) and only the ReadProxy and
// WriteProxy sections are overwritten before SaveTo.
func (m *Manager) Save(filename string) error {
	m.mu.RLock()
	read, write := m.read, m.write
	m.mu.RUnlock()

	cfg, err := ini.LooseLoad(filename)
	if err != nil {
		return fmt.Errorf("proxymanager: read %q before save: %w", filename, err)
	}
	writeEndpoint(cfg, "ReadProxy", read)
	writeEndpoint(cfg, "WriteProxy", write)
	if err := cfg.SaveTo(filename); err != nil {
		return fmt.Errorf("proxymanager: save %q: %w", filename, err)
	}
	return nil
}

func writeEndpoint(cfg *ini.File, section string, e Endpoint) {
	sec := cfg.Section(section)
	sec.Key("Proxy").SetValue(boolStr(e.Enabled))
	sec.Key("Address").SetValue(e.Address)
	sec.Key("Port").SetValue(fmt.Sprintf("%d", e.Port))
	sec.Key("UserID").SetValue(e.UserID)
	sec.Key("Password").SetValue(e.Password)
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SetEndpoint replaces the configuration for the given mode.
func (m *Manager) SetEndpoint(mode Mode, e Endpoint) {
	m.mu.Lock()
	if mode == Read {
		m.read = e
	} else {
		m.write = e
	}
	m.mu.Unlock()
}

// GetEndpoint returns the current configuration for the given mode.
func (m *Manager) GetEndpoint(mode Mode) Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mode == Read {
		return m.read
	}
	return m.write
}

// Agent returns an http.Transport.Proxy-compatible function for mode, or nil
// if that endpoint is not active (meaning: connect directly).
func (m *Manager) Agent(mode Mode) (func(*http.Request) (*url.URL, error), error) {
	e := m.GetEndpoint(mode)
	if !e.Active() {
		return nil, nil
	}
	u, err := e.url()
	if err != nil {
		return nil, fmt.Errorf("proxymanager: build proxy URL: %w", err)
	}
	return http.ProxyURL(u), nil
}
