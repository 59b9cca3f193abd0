package proxymanager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndActive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxy.ini")
	content := "[ReadProxy]\nProxy=true\nAddress=127.0.0.1\nPort=8080\nUserID=bob\nPassword=secret\n\n[WriteProxy]\nProxy=false\nAddress=\nPort=0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := New()
	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	read := m.GetEndpoint(Read)
	if !read.Active() {
		t.Fatalf("expected read endpoint active, got %+v", read)
	}
	write := m.GetEndpoint(Write)
	if write.Active() {
		t.Fatalf("expected write endpoint inactive, got %+v", write)
	}
}

func TestAgentNilWhenInactive(t *testing.T) {
	m := New()
	agent, err := m.Agent(Read)
	if err != nil {
		t.Fatalf("Agent: %v", err)
	}
	if agent != nil {
		t.Fatalf("expected nil agent for inactive endpoint")
	}
}

func TestAgentReturnsProxyFuncWhenActive(t *testing.T) {
	m := New()
	m.SetEndpoint(Write, Endpoint{Enabled: true, Address: "proxy.local", Port: 3128})
	agent, err := m.Agent(Write)
	if err != nil {
		t.Fatalf("Agent: %v", err)
	}
	if agent == nil {
		t.Fatalf("expected non-nil agent for active endpoint")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxy.ini")

	m := New()
	m.SetEndpoint(Read, Endpoint{Enabled: true, Address: "1.2.3.4", Port: 80})
	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m2 := New()
	if err := m2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m2.GetEndpoint(Read)
	if got.Address != "1.2.3.4" || got.Port != 80 || !got.Enabled {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
