package history

import (
	"strconv"
	"testing"
)

func TestBrowsingAddDeduplicatesAndPrepends(t *testing.T) {
	b := NewBrowsing(0)
	b.Add("https://example.5ch.net/test/", "1000", "First")
	b.Add("https://other.5ch.net/test/", "2000", "Second")
	b.Add("https://example.5ch.net/test/", "1000", "First (revisited)")

	entries := b.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 after a revisit", len(entries))
	}
	if entries[0].ThreadID != "1000" || entries[0].Title != "First (revisited)" {
		t.Fatalf("entries[0] = %+v, want the revisited thread moved to front", entries[0])
	}
	if entries[1].ThreadID != "2000" {
		t.Fatalf("entries[1] = %+v, want the untouched second thread", entries[1])
	}
}

func TestBrowsingCapsAtConfiguredSize(t *testing.T) {
	b := NewBrowsing(3)
	for i := 0; i < 5; i++ {
		b.Add("https://example.5ch.net/test/", itoaThreadID(i), "t")
	}
	if len(b.Entries()) != 3 {
		t.Fatalf("len(entries) = %d, want capped at 3", len(b.Entries()))
	}
	if b.Entries()[0].ThreadID != itoaThreadID(4) {
		t.Fatalf("newest entry = %+v, want thread 4 at the front", b.Entries()[0])
	}
}

func TestBrowsingDefaultCapIs200(t *testing.T) {
	b := NewBrowsing(0)
	for i := 0; i < 250; i++ {
		b.Add("https://example.5ch.net/test/", itoaThreadID(i), "t")
	}
	if len(b.Entries()) != 200 {
		t.Fatalf("len(entries) = %d, want default cap of 200", len(b.Entries()))
	}
}

func TestPostAppendOnlyEvictsOldest(t *testing.T) {
	p := NewPost(2)
	p.Add(PostEntry{BoardURL: "a", ThreadID: "1"})
	p.Add(PostEntry{BoardURL: "a", ThreadID: "2"})
	p.Add(PostEntry{BoardURL: "a", ThreadID: "3"})

	entries := p.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want capped at 2", len(entries))
	}
	if entries[0].ThreadID != "2" || entries[1].ThreadID != "3" {
		t.Fatalf("entries = %+v, want [2, 3] after evicting the oldest", entries)
	}
}

func itoaThreadID(i int) string {
	return strconv.Itoa(i)
}
