package cache

import "testing"

func TestBoardDirStableAndDistinct(t *testing.T) {
	a := BoardDir("/data", "https://a.5ch.net/news/")
	aAgain := BoardDir("/data", "https://a.5ch.net/news/")
	b := BoardDir("/data", "https://b.5ch.net/news/")
	if a != aAgain {
		t.Fatalf("expected BoardDir to be stable for the same URL")
	}
	if a == b {
		t.Fatalf("expected different URLs to produce different directories")
	}
}
