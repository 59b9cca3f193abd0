package cookiejar

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDomainMatching(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "DMDM", Value: "v", Domain: ".5ch.net", Path: "/"})

	if _, ok := j.GetCookie("DMDM", "example.5ch.net"); !ok {
		t.Errorf("expected DMDM to match example.5ch.net")
	}
	if _, ok := j.GetCookie("DMDM", "example.com"); ok {
		t.Errorf("expected DMDM not to match example.com")
	}
}

func TestSessionOnlyForcedForSid(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "sid", Value: "abc", Domain: "uplift.5ch.net", Path: "/", SessionOnly: false})
	c, ok := j.GetCookie("sid", "uplift.5ch.net")
	if !ok || !c.SessionOnly {
		t.Fatalf("expected sid cookie to be forced session-only, got %+v ok=%v", c, ok)
	}
}

func TestExpiredCookieNeverReturned(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{
		Name: "x", Value: "v", Domain: "example.com", Path: "/",
		HasExpires: true, Expires: time.Now().Add(-time.Hour),
	})
	if _, ok := j.GetCookie("x", "example.com"); ok {
		t.Fatalf("expired cookie should not be returned")
	}
}

func TestSetCookieReplacesSameKey(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "x", Value: "first", Domain: "example.com", Path: "/"})
	j.SetCookie(StoredCookie{Name: "x", Value: "second", Domain: "example.com", Path: "/"})
	c, ok := j.GetCookie("x", "example.com")
	if !ok || c.Value != "second" {
		t.Fatalf("expected replaced value 'second', got %+v ok=%v", c, ok)
	}
	if j.Count() != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", j.Count())
	}
}

func TestBuildCookieHeaderStableOrder(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "a", Value: "1", Domain: "example.com", Path: "/"})
	j.SetCookie(StoredCookie{Name: "b", Value: "2", Domain: "example.com", Path: "/"})
	u, _ := url.Parse("https://example.com/board/")
	got := j.BuildCookieHeader(u)
	want := "a=1; b=2"
	if got != want {
		t.Errorf("BuildCookieHeader() = %q, want %q", got, want)
	}
}

func TestPathMatching(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "p", Value: "v", Domain: "example.com", Path: "/newsplus/"})
	u1, _ := url.Parse("https://example.com/newsplus/dat/1.dat")
	u2, _ := url.Parse("https://example.com/other/")
	if got := j.BuildCookieHeader(u1); got != "p=v" {
		t.Errorf("expected cookie for matching path, got %q", got)
	}
	if got := j.BuildCookieHeader(u2); got != "" {
		t.Errorf("expected no cookie for non-matching path, got %q", got)
	}
}

func TestParseSetCookieHeader(t *testing.T) {
	j := New()
	u, _ := url.Parse("https://uplift.5ch.net/login")
	j.ParseSetCookieHeader([]string{`sid=abc123; Path=/; Domain=.5ch.net`}, u)
	c, ok := j.GetCookie("sid", "uplift.5ch.net")
	if !ok || c.Value != "abc123" {
		t.Fatalf("expected parsed sid cookie, got %+v ok=%v", c, ok)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookies.txt")

	j := New()
	j.SetCookie(StoredCookie{
		Name: "persist", Value: "v1", Domain: "example.com", Path: "/",
		HasExpires: true, Expires: time.Now().Add(time.Hour),
	})
	// sid is always session-only and must never be persisted.
	j.SetCookie(StoredCookie{Name: "sid", Value: "secret", Domain: "uplift.5ch.net", Path: "/"})

	if err := j.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if contains(string(data), "secret") {
		t.Fatalf("session-only cookie value leaked into persisted file: %q", data)
	}

	j2 := New()
	if err := j2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, ok := j2.GetCookie("persist", "example.com")
	if !ok || c.Value != "v1" {
		t.Fatalf("expected reloaded cookie 'v1', got %+v ok=%v", c, ok)
	}
}

func TestListReturnsInsertionOrder(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "a", Value: "1", Domain: "example.com", Path: "/"})
	j.SetCookie(StoredCookie{Name: "b", Value: "2", Domain: "example.com", Path: "/"})

	list := j.List()
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Fatalf("List() = %+v, want [a, b] in insertion order", list)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	j := New()
	j.SetCookie(StoredCookie{Name: "a", Value: "1", Domain: "example.com", Path: "/"})
	j.Clear()
	if j.Count() != 0 {
		t.Fatalf("Count() = %d after Clear(), want 0", j.Count())
	}
	if len(j.List()) != 0 {
		t.Fatalf("List() = %v after Clear(), want empty", j.List())
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
