package cache

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// ReplaceRule is one literal substitution loaded from dat-replace.ini.
type ReplaceRule struct {
	From string
	To   string
}

// LoadDatReplaceRules reads dat-replace.ini, one [Rules] key=value pair per
// substitution. Lines whose key or value contains the DAT field separator
// "<>" are rejected, per spec §4.H, since applying them could silently
// reshape field boundaries.
func LoadDatReplaceRules(path string) ([]ReplaceRule, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("cache: load dat-replace.ini: %w", err)
	}
	section := cfg.Section("Rules")
	rules := make([]ReplaceRule, 0, len(section.Keys()))
	for _, key := range section.Keys() {
		from, to := key.Name(), key.Value()
		if strings.Contains(from, "<>") || strings.Contains(to, "<>") {
			return nil, fmt.Errorf("cache: dat-replace.ini: rule %q contains field separator \"<>\"", from)
		}
		rules = append(rules, ReplaceRule{From: from, To: to})
	}
	return rules, nil
}

// ApplyDatReplaceRules applies every rule to text in order. An empty
// replacement becomes spaces of the original match's length, preserving byte
// offsets for any downstream Range-based reconstruction.
func ApplyDatReplaceRules(text string, rules []ReplaceRule) string {
	for _, r := range rules {
		to := r.To
		if to == "" {
			to = strings.Repeat(" ", len(r.From))
		}
		text = strings.ReplaceAll(text, r.From, to)
	}
	return text
}
