package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDatReplaceRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dat-replace.ini")
	contents := "[Rules]\nbadword=***\nother=\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	rules, err := LoadDatReplaceRules(path)
	if err != nil {
		t.Fatalf("LoadDatReplaceRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %+v", rules)
	}
}

func TestLoadDatReplaceRulesRejectsFieldSeparator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dat-replace.ini")
	contents := "[Rules]\nbad<>word=x\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadDatReplaceRules(path); err == nil {
		t.Fatalf("expected error for a rule containing the DAT field separator")
	}
}

func TestApplyDatReplaceRulesEmptyReplacementPreservesLength(t *testing.T) {
	rules := []ReplaceRule{{From: "badword", To: ""}}
	got := ApplyDatReplaceRules("this is a badword here", rules)
	want := "this is a        here"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if len(got) != len("this is a badword here") {
		t.Fatalf("expected replacement to preserve original length")
	}
}

func TestApplyDatReplaceRulesLiteralSubstitution(t *testing.T) {
	rules := []ReplaceRule{{From: "foo", To: "bar"}}
	if got := ApplyDatReplaceRules("foo foo", rules); got != "bar bar" {
		t.Fatalf("got %q", got)
	}
}
