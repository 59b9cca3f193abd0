package auth

import (
	"testing"

	"github.com/roflsunriz/VBBB-sub002/internal/cookiejar"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

func newTestManager() (*Manager, *cookiejar.Jar) {
	jar := cookiejar.New()
	client := httpclient.New(jar, proxymanager.New())
	return New(client, jar), jar
}

func TestParseBeID(t *testing.T) {
	id, level, ok := ParseBeID("2024/01/15(月) 12:00:00.00 BE:12345678-1000")
	if !ok {
		t.Fatalf("expected BE marker to be found")
	}
	if id != "12345678" || level != 1000 {
		t.Fatalf("got id=%q level=%d", id, level)
	}
}

func TestParseBeIDMissing(t *testing.T) {
	if _, _, ok := ParseBeID("no marker here"); ok {
		t.Fatalf("expected ok=false when no BE marker present")
	}
}

func TestBuildBeProfileURL(t *testing.T) {
	got := BuildBeProfileURL("12345678", 5)
	want := "https://be.5ch.net/test/p.php?i=12345678/5"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBeLoggedInRequiresBothCookies(t *testing.T) {
	m, jar := newTestManager()
	if m.BeLoggedIn() {
		t.Fatalf("expected not logged in with no cookies")
	}
	jar.SetCookie(cookiejar.StoredCookie{Name: "DMDM", Value: "x", Domain: beDomain, Path: "/"})
	if m.BeLoggedIn() {
		t.Fatalf("expected not logged in with only one cookie")
	}
	jar.SetCookie(cookiejar.StoredCookie{Name: "MDMD", Value: "y", Domain: beDomain, Path: "/"})
	if !m.BeLoggedIn() {
		t.Fatalf("expected logged in once both cookies present")
	}
}

func TestBeLogout(t *testing.T) {
	m, jar := newTestManager()
	jar.SetCookie(cookiejar.StoredCookie{Name: "DMDM", Value: "x", Domain: beDomain, Path: "/"})
	jar.SetCookie(cookiejar.StoredCookie{Name: "MDMD", Value: "y", Domain: beDomain, Path: "/"})
	m.BeLogout()
	if m.BeLoggedIn() {
		t.Fatalf("expected logged out after BeLogout")
	}
}

func TestClassifyDonguriProbe(t *testing.T) {
	cases := map[string]string{
		"page with grtDonguri marker":   "consumed",
		"page with grtDngBroken marker": "broken",
		"page with broken_acorn marker": "broken",
		"page with nothing special":     "ok",
	}
	for body, want := range cases {
		if got := classifyDonguriProbe(body); got != want {
			t.Fatalf("classifyDonguriProbe(%q) = %q, want %q", body, got, want)
		}
	}
}

func TestUpliftSessionIDFormat(t *testing.T) {
	m, _ := newTestManager()
	m.mu.Lock()
	m.uplift = UpliftState{LoggedIn: true, Sid: "abc123", UserAgentTag: "Monazilla/1.00"}
	m.mu.Unlock()
	if got, want := m.UpliftSessionID(), "Monazilla/1.00:abc123"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUpliftSessionIDEmptyWhenLoggedOut(t *testing.T) {
	m, _ := newTestManager()
	if got := m.UpliftSessionID(); got != "" {
		t.Fatalf("expected empty session id when logged out, got %q", got)
	}
}

func TestUpliftLogout(t *testing.T) {
	m, jar := newTestManager()
	jar.SetCookie(cookiejar.StoredCookie{Name: "sid", Value: "abc123", Domain: upliftCookieDom, Path: "/"})
	m.mu.Lock()
	m.uplift = UpliftState{LoggedIn: true, Sid: "abc123"}
	m.mu.Unlock()

	m.UpliftLogout()
	if snap := m.UpliftSnapshot(); snap.LoggedIn {
		t.Fatalf("expected logged out after UpliftLogout")
	}
	if _, ok := jar.GetCookie("sid", upliftCookieDom); ok {
		t.Fatalf("expected sid cookie removed from jar")
	}
}
