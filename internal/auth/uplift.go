// Package auth implements the three independent 5ch login/session flows
// named in spec §4.E: UPLIFT (sid), Be (DMDM/MDMD), and Donguri (acorn).
// Each flow owns its own state and talks to the shared httpclient.Client and
// cookiejar.Jar; none of them persist credentials.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/cookiejar"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
)

const (
	upliftLoginURL  = "https://uplift.5ch.net/log"
	upliftReferer   = "https://uplift.5ch.net/login"
	upliftCookieDom = "uplift.5ch.net"
)

// UpliftState mirrors spec §3's AuthState.UPLIFT member.
type UpliftState struct {
	LoggedIn     bool
	Sid          string
	UserAgentTag string
}

// Manager owns the UPLIFT, Be, and Donguri session state for one engine
// instance. All mutation goes through its RWMutex, following the teacher's
// guarded-struct-plus-manager convention.
type Manager struct {
	client *httpclient.Client
	jar    *cookiejar.Jar

	mu      sync.RWMutex
	uplift  UpliftState
	donguri DonguriState
}

// New creates a Manager backed by client and jar.
func New(client *httpclient.Client, jar *cookiejar.Jar) *Manager {
	return &Manager{client: client, jar: jar}
}

// UpliftLogin submits credentials to uplift.5ch.net/log and, on a
// Set-Cookie-provided sid, marks the session logged in. userAgentTag is the
// client's User-Agent string, used to compose the session id embedded in
// subsequent request URLs.
func (m *Manager) UpliftLogin(ctx context.Context, user, password, userAgentTag string) error {
	body, err := encodeForm([][2]string{{"usr", user}, {"pwd", password}, {"log", ""}}, codec.UTF8)
	if err != nil {
		return fmt.Errorf("auth: uplift: encode form: %w", err)
	}

	resp, err := m.client.Fetch(ctx, httpclient.Request{
		URL:    upliftLoginURL,
		Method: httpclient.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Referer":      upliftReferer,
		},
		Body: []byte(body),
	})
	if err != nil {
		return fmt.Errorf("auth: uplift login request: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 400 {
		return fmt.Errorf("auth: uplift login returned HTTP %d", resp.Status)
	}

	sidCookie, ok := m.jar.GetCookie("sid", upliftCookieDom)
	if !ok || sidCookie.Value == "" {
		return fmt.Errorf("auth: uplift login did not yield a sid cookie")
	}

	m.mu.Lock()
	m.uplift = UpliftState{LoggedIn: true, Sid: sidCookie.Value, UserAgentTag: userAgentTag}
	m.mu.Unlock()
	return nil
}

// UpliftLogout clears the sid cookie and the in-memory session state. UPLIFT
// sessions are never persisted to disk, so logout is purely in-process.
func (m *Manager) UpliftLogout() {
	m.jar.RemoveCookie("sid", upliftCookieDom, "/")
	m.mu.Lock()
	m.uplift = UpliftState{}
	m.mu.Unlock()
}

// UpliftSessionID returns the "<UserAgent>:<sid>" token 5ch's oyster
// (past-log) endpoint expects as a sid query parameter. Returns "" when not
// logged in.
func (m *Manager) UpliftSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.uplift.LoggedIn {
		return ""
	}
	return m.uplift.UserAgentTag + ":" + m.uplift.Sid
}

// UpliftSnapshot returns a snapshot of the current UPLIFT session.
func (m *Manager) UpliftSnapshot() UpliftState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uplift
}
