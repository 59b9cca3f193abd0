package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
)

const (
	donguriProbeURL = "https://donguri.5ch.net/"
	donguriLoginURL = "https://donguri.5ch.net/login"
)

// DonguriState mirrors spec §3's AuthState.Donguri member.
type DonguriState struct {
	HasAcorn     bool
	LastChecked  time.Time
	HasLastCheck bool
	LastResult   string
}

// DonguriRefresh probes donguri.5ch.net to detect acorn possession. The
// page's substring-scan is the same family of signal used by the post
// engine's result classification, but narrowed here to a single
// possession/no-possession outcome.
func (m *Manager) DonguriRefresh(ctx context.Context) error {
	resp, err := m.client.Fetch(ctx, httpclient.Request{URL: donguriProbeURL, Method: httpclient.MethodGet})
	if err != nil {
		return fmt.Errorf("auth: donguri refresh request: %w", err)
	}
	body := string(resp.Body)

	m.mu.Lock()
	m.donguri = DonguriState{
		HasAcorn:     !strings.Contains(body, "grtDngBroken") && !strings.Contains(body, "broken_acorn"),
		LastChecked:  time.Now(),
		HasLastCheck: true,
		LastResult:   classifyDonguriProbe(body),
	}
	m.mu.Unlock()
	return nil
}

// DonguriLogin performs the Donguri site's mail/password login flow.
func (m *Manager) DonguriLogin(ctx context.Context, mail, password string) error {
	body, err := encodeForm([][2]string{{"mail", mail}, {"pass", password}}, codec.UTF8)
	if err != nil {
		return fmt.Errorf("auth: donguri: encode form: %w", err)
	}
	resp, err := m.client.Fetch(ctx, httpclient.Request{
		URL:    donguriLoginURL,
		Method: httpclient.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte(body),
	})
	if err != nil {
		return fmt.Errorf("auth: donguri login request: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 400 {
		return fmt.Errorf("auth: donguri login returned HTTP %d", resp.Status)
	}
	return m.DonguriRefresh(ctx)
}

// DonguriSnapshot returns the current Donguri state.
func (m *Manager) DonguriSnapshot() DonguriState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.donguri
}

func classifyDonguriProbe(body string) string {
	switch {
	case strings.Contains(body, "grtDonguri"):
		return "consumed"
	case strings.Contains(body, "grtDngBroken"), strings.Contains(body, "broken_acorn"):
		return "broken"
	default:
		return "ok"
	}
}
