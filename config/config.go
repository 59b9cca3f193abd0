// Package config provides configuration management for the BBS engine.
// It supports JSON-based configuration loading with safe defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds all tunable parameters for the BBS engine. The struct is
// designed to be loaded once at startup and then shared across goroutines
// as a read-only value.
type Config struct {
	// DataDir is the root directory under which per-board caches,
	// favorites.json, history.json, cookies.txt, and the other persisted
	// files named in spec §6 are stored.
	DataDir string `json:"data_dir"`

	// RequestTimeout is the end-to-end timeout for a single HTTP request.
	RequestTimeout time.Duration `json:"request_timeout"`

	// MaxRetries is the number of times a failed request is retried before
	// the fetch pipeline gives up and surfaces a Network error.
	MaxRetries int `json:"max_retries"`

	// ProxyFile is the path to proxy.ini (spec §4.D). Leave empty to run
	// without proxies.
	ProxyFile string `json:"proxy_file"`

	// BrowserParity enables the optional uTLS/HTTP2 transport that presents
	// a stable, coherent client identity to CDN-fronted boards.
	BrowserParity bool `json:"browser_parity"`

	// RoundEnabled and RoundIntervalMinutes seed the round scheduler's
	// initial configuration (spec §4.L); both are also reconfigurable at
	// runtime via the `round:*` RPC channels.
	RoundEnabled         bool `json:"round_enabled"`
	RoundIntervalMinutes int  `json:"round_interval_minutes"`

	// BrowsingHistoryCap and PostHistoryCap override the 200-entry default
	// cap for each history list (spec §4.M); zero uses the default.
	BrowsingHistoryCap int `json:"browsing_history_cap"`
	PostHistoryCap     int `json:"post_history_cap"`

	// DonguriErrorSubstrings is a set of response-body substrings that
	// classify a Donguri probe as broken (spec §9 Open Question 2). It is
	// decoded from the config file, but post.Classify and the Donguri probe
	// do not read it; they classify against their own built-in substrings.
	DonguriErrorSubstrings []string `json:"donguri_error_substrings,omitempty"`
}

// LoadConfig reads a JSON file at filename and deserialises it into a Config.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename) // #nosec G304 -- filename is caller-provided config path
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", filename, err)
	}
	defer f.Close()

	var cfg Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields() // catch typos in config files early
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", filename, err)
	}
	return &cfg, nil
}

// DefaultDonguriErrorSubstrings is spec §4.I's default Donguri-broken
// classification set. Nothing in this module reads it; post.Classify and the
// Donguri probe classify against their own built-in substrings.
var DefaultDonguriErrorSubstrings = []string{
	"grtDngBroken", "broken_acorn", "[1044]", "[1045]", "[0088]",
}

// DefaultConfig returns a *Config pre-filled with sensible defaults. Callers
// are free to mutate the returned struct; each call returns a fresh,
// independent copy.
func DefaultConfig() *Config {
	return &Config{
		DataDir:              "./data",
		RequestTimeout:       30 * time.Second,
		MaxRetries:           3,
		ProxyFile:            "",
		BrowserParity:        false,
		RoundEnabled:         false,
		RoundIntervalMinutes: 15,
		BrowsingHistoryCap:   200,
		PostHistoryCap:       200,
	}
}
