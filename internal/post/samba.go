package post

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/ini.v1"

	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// SambaGate enforces the per-board post interval recorded in SambaTime.ini:
// section [Setting] maps a board id (or "@boardKey") to an interval in
// seconds, section [Send] maps a board id to the ISO timestamp of its last
// successful post.
type SambaGate struct {
	path      string
	intervals map[string]int
	lastPost  map[string]time.Time
}

// LoadSambaGate reads SambaTime.ini at path. A missing file yields an empty,
// always-permitting gate.
func LoadSambaGate(path string) (*SambaGate, error) {
	g := &SambaGate{path: path, intervals: map[string]int{}, lastPost: map[string]time.Time{}}

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("post: load SambaTime.ini: %w", err)
	}
	for _, key := range cfg.Section("Setting").Keys() {
		if n, err := key.Int(); err == nil {
			g.intervals[key.Name()] = n
		}
	}
	for _, key := range cfg.Section("Send").Keys() {
		if t, err := time.Parse(time.RFC3339, key.Value()); err == nil {
			g.lastPost[key.Name()] = t
		}
	}
	return g, nil
}

// Allow reports whether boardKey may post right now, given its configured
// interval (falling back to "@boardKey" as a network-wide default, then to
// no restriction at all if neither is configured).
func (g *SambaGate) Allow(boardKey string, now time.Time) bool {
	interval, ok := g.intervalFor(boardKey)
	if !ok {
		return true
	}
	last, ok := g.lastPost[boardKey]
	if !ok {
		return true
	}
	return now.Sub(last) >= time.Duration(interval)*time.Second
}

func (g *SambaGate) intervalFor(boardKey string) (int, bool) {
	if n, ok := g.intervals[boardKey]; ok {
		return n, true
	}
	if n, ok := g.intervals["@"+boardKey]; ok {
		return n, true
	}
	return 0, false
}

// RecordPost stamps boardKey's last-post time as now and persists the gate
// back to disk atomically.
func (g *SambaGate) RecordPost(boardKey string, now time.Time) error {
	g.lastPost[boardKey] = now
	return g.save()
}

func (g *SambaGate) save() error {
	cfg := ini.Empty()
	setting, err := cfg.NewSection("Setting")
	if err != nil {
		return fmt.Errorf("post: build SambaTime.ini: %w", err)
	}
	for k, v := range g.intervals {
		setting.NewKey(k, fmt.Sprintf("%d", v))
	}
	send, err := cfg.NewSection("Send")
	if err != nil {
		return fmt.Errorf("post: build SambaTime.ini: %w", err)
	}
	for k, v := range g.lastPost {
		send.NewKey(k, v.UTC().Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("post: render SambaTime.ini: %w", err)
	}
	return util.WriteFileAtomic(g.path, buf.Bytes(), 0o600)
}
