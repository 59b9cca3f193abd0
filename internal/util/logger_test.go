package util

import "testing"

func TestMaskSecrets(t *testing.T) {
	cases := map[string]string{
		"cookie=abc123; other=1":  "cookie=***MASKED***; other=1",
		"sid:deadbeef":            "sid:***MASKED***",
		"password=hunter2":        "password=***MASKED***",
		"no secrets here":         "no secrets here",
		"DMDM=1234-5 MDMD=6789-0": "DMDM=***MASKED*** MDMD=***MASKED***",
	}
	for in, want := range cases {
		if got := maskSecrets(in); got != want {
			t.Errorf("maskSecrets(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoggerRingBufferCapsAt1000(t *testing.T) {
	l := New(LevelDebug)
	for i := 0; i < 1500; i++ {
		l.Info("test", "line")
	}
	logs := l.RecentLogs()
	if len(logs) != 1000 {
		t.Fatalf("RecentLogs() len = %d, want 1000", len(logs))
	}
}

func TestLoggerClearLogs(t *testing.T) {
	l := New(LevelDebug)
	l.Info("test", "one")
	l.ClearLogs()
	if got := len(l.RecentLogs()); got != 0 {
		t.Fatalf("after ClearLogs, RecentLogs() len = %d, want 0", got)
	}
}
