package auth

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
)

const (
	beLoginURL = "https://be.5ch.net/log"
	beDomain   = ".5ch.net"
)

// beIDPattern matches the "BE:<digits>-<digits>" marker 5ch embeds in a
// response's dateTime field, e.g. "BE:12345678-1000".
var beIDPattern = regexp.MustCompile(`BE:(\d+)-(\d+)`)

// BeState mirrors spec §3's AuthState.Be member: logged in iff both DMDM and
// MDMD are present and unexpired.
type BeState struct {
	LoggedIn bool
}

// BeLogin submits mail/pass to be.5ch.net/log. Success is observed
// indirectly: a successful login sets the DMDM and MDMD cookies on
// .5ch.net, which BeLoggedIn then reports.
func (m *Manager) BeLogin(ctx context.Context, mail, password string) error {
	body, err := encodeForm([][2]string{{"mail", mail}, {"pass", password}}, codec.UTF8)
	if err != nil {
		return fmt.Errorf("auth: be: encode form: %w", err)
	}
	resp, err := m.client.Fetch(ctx, httpclient.Request{
		URL:    beLoginURL,
		Method: httpclient.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte(body),
	})
	if err != nil {
		return fmt.Errorf("auth: be login request: %w", err)
	}
	if resp.Status < 200 || resp.Status >= 400 {
		return fmt.Errorf("auth: be login returned HTTP %d", resp.Status)
	}
	if !m.BeLoggedIn() {
		return fmt.Errorf("auth: be login did not yield DMDM/MDMD cookies")
	}
	return nil
}

// BeLogout removes both Be cookies.
func (m *Manager) BeLogout() {
	m.jar.RemoveCookie("DMDM", beDomain, "/")
	m.jar.RemoveCookie("MDMD", beDomain, "/")
}

// BeLoggedIn reports whether both DMDM and MDMD are present and unexpired on
// .5ch.net.
func (m *Manager) BeLoggedIn() bool {
	_, dmdmOK := m.jar.GetCookie("DMDM", beDomain)
	_, mdmdOK := m.jar.GetCookie("MDMD", beDomain)
	return dmdmOK && mdmdOK
}

// BeSnapshot returns the current derived Be login state.
func (m *Manager) BeSnapshot() BeState {
	return BeState{LoggedIn: m.BeLoggedIn()}
}

// ParseBeID extracts the BE id and level from a response's dateTime field.
// ok is false when the field carries no BE marker.
func ParseBeID(dateTimeField string) (beID string, beLevel int, ok bool) {
	m := beIDPattern.FindStringSubmatch(dateTimeField)
	if m == nil {
		return "", 0, false
	}
	level, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], level, true
}

// BuildBeProfileURL composes the public Be profile URL for beID at
// resNumber, e.g. "https://be.5ch.net/test/p.php?i=12345678/5".
func BuildBeProfileURL(beID string, resNumber int) string {
	return fmt.Sprintf("https://be.5ch.net/test/p.php?i=%s/%d", beID, resNumber)
}
