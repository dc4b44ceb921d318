package rules

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
)

type captureApplier struct {
	mu   sync.Mutex
	sets []*classify.Rules
}

func (c *captureApplier) SetRules(r *classify.Rules) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets = append(c.sets, r)
}

func (c *captureApplier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}

func (c *captureApplier) last() *classify.Rules {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sets) == 0 {
		return nil
	}
	return c.sets[len(c.sets)-1]
}

const validRules = `
extra_keywords:
  - corplogin
extra_params:
  - corp_token
bypass_hosts:
  - "*.internal.example"
`

func writeRules(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestParse(t *testing.T) {
	r, err := Parse([]byte(validRules))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(r.ExtraKeywords) != 1 || r.ExtraKeywords[0] != "corplogin" {
		t.Errorf("Expected extra_keywords [corplogin], got %v", r.ExtraKeywords)
	}
	if len(r.ExtraParams) != 1 || r.ExtraParams[0] != "corp_token" {
		t.Errorf("Expected extra_params [corp_token], got %v", r.ExtraParams)
	}
	if len(r.BypassHosts) != 1 {
		t.Errorf("Expected 1 bypass host, got %d", len(r.BypassHosts))
	}
}

func TestParseMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("extra_keywords: [unclosed")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestParseInvalidPattern(t *testing.T) {
	if _, err := Parse([]byte("bypass_hosts:\n  - \"[\"\n")); err == nil {
		t.Error("Expected error for invalid glob pattern")
	}
}

func TestParseBlankKeyword(t *testing.T) {
	if _, err := Parse([]byte("extra_keywords:\n  - \"  \"\n")); err == nil {
		t.Error("Expected error for blank keyword")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "rules.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWatcherInitialLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeRules(t, path, validRules)

	applier := &captureApplier{}
	w, err := NewWatcher(path, 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if applier.count() != 1 {
		t.Fatalf("Expected 1 apply after start, got %d", applier.count())
	}
	if got := applier.last(); len(got.ExtraKeywords) != 1 {
		t.Errorf("Expected 1 extra keyword, got %v", got.ExtraKeywords)
	}
}

func TestWatcherMissingFileStart(t *testing.T) {
	dir := t.TempDir()
	applier := &captureApplier{}
	w, err := NewWatcher(filepath.Join(dir, "rules.yaml"), 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if applier.count() != 0 {
		t.Errorf("Expected no applies without a rules file, got %d", applier.count())
	}
}

func TestWatcherRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeRules(t, path, validRules)

	applier := &captureApplier{}
	w, err := NewWatcher(path, 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	writeRules(t, path, "bypass_hosts:\n  - \"[\"\n")
	if err := w.Reload(); err == nil {
		t.Error("Expected Reload to report invalid rules")
	}
	if applier.count() != 1 {
		t.Errorf("Expected active rules kept after invalid reload, got %d applies", applier.count())
	}
}

func TestWatcherReloadForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeRules(t, path, validRules)

	applier := &captureApplier{}
	w, err := NewWatcher(path, 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Content unchanged, but force bypasses the hash check
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if applier.count() != 2 {
		t.Errorf("Expected forced reload to reapply, got %d applies", applier.count())
	}
}

func TestWatcherReloadMissingFile(t *testing.T) {
	dir := t.TempDir()
	applier := &captureApplier{}
	w, err := NewWatcher(filepath.Join(dir, "rules.yaml"), 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	if err := w.Reload(); err == nil {
		t.Error("Expected forced reload of missing file to fail")
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	writeRules(t, path, validRules)

	applier := &captureApplier{}
	w, err := NewWatcher(path, 10*time.Millisecond, applier, nil)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	writeRules(t, path, "extra_keywords:\n  - ssoportal\n")

	deadline := time.Now().Add(3 * time.Second)
	for applier.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if applier.count() < 2 {
		t.Fatal("Expected file change to trigger reload")
	}
	got := applier.last()
	if len(got.ExtraKeywords) != 1 || got.ExtraKeywords[0] != "ssoportal" {
		t.Errorf("Expected reloaded keywords [ssoportal], got %v", got.ExtraKeywords)
	}
}
