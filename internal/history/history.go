// Package history implements spec §4.M's browsing and post history lists:
// a deduplicating, capped, newest-first browsing log and an append-only,
// separately capped post log.
package history

// BrowsingEntry records one visited thread.
type BrowsingEntry struct {
	BoardURL string
	ThreadID string
	Title    string
}

const defaultBrowsingCap = 200

// Browsing is a newest-first list capped at a fixed size, deduplicated on
// (BoardURL, ThreadID): adding an entry that already exists removes the
// prior occurrence before prepending the new one, so revisiting a thread
// moves it back to the front instead of creating a second row.
type Browsing struct {
	cap     int
	entries []BrowsingEntry
}

// NewBrowsing creates a Browsing list capped at capacity entries. A
// capacity of 0 uses spec's default of 200.
func NewBrowsing(capacity int) *Browsing {
	if capacity <= 0 {
		capacity = defaultBrowsingCap
	}
	return &Browsing{cap: capacity}
}

// Add records a visit, deduplicating on (boardURL, threadID) and capping
// the list at its configured size.
func (b *Browsing) Add(boardURL, threadID, title string) {
	filtered := make([]BrowsingEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.BoardURL == boardURL && e.ThreadID == threadID {
			continue
		}
		filtered = append(filtered, e)
	}
	entry := BrowsingEntry{BoardURL: boardURL, ThreadID: threadID, Title: title}
	b.entries = append([]BrowsingEntry{entry}, filtered...)
	if len(b.entries) > b.cap {
		b.entries = b.entries[:b.cap]
	}
}

// Entries returns the current newest-first list.
func (b *Browsing) Entries() []BrowsingEntry {
	return append([]BrowsingEntry(nil), b.entries...)
}

// PostEntry is spec §3's PostHistoryEntry: one successfully submitted post.
type PostEntry struct {
	BoardURL string
	ThreadID string
	Name     string
	Mail     string
	Message  string
}

const defaultPostCap = 200

// Post is an append-only list of submitted posts, capped independently of
// Browsing. The oldest entry is dropped once the cap is exceeded.
type Post struct {
	cap     int
	entries []PostEntry
}

// NewPost creates a Post list capped at capacity entries. A capacity of 0
// uses the same 200-entry default as Browsing.
func NewPost(capacity int) *Post {
	if capacity <= 0 {
		capacity = defaultPostCap
	}
	return &Post{cap: capacity}
}

// Add appends entry, newest-last, evicting the oldest entry if the list is
// at capacity.
func (p *Post) Add(entry PostEntry) {
	p.entries = append(p.entries, entry)
	if len(p.entries) > p.cap {
		p.entries = p.entries[len(p.entries)-p.cap:]
	}
}

// Entries returns the current append-ordered list.
func (p *Post) Entries() []PostEntry {
	return append([]PostEntry(nil), p.entries...)
}
