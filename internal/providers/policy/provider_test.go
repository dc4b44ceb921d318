package policy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
)

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReloader) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeReloader) Path() string { return "/tmp/rules.yaml" }

func newTestProvider(reloader Reloader) *Provider {
	return NewProvider(classify.New(), reloader)
}

func TestClassify(t *testing.T) {
	p := newTestProvider(nil)
	ctx := context.Background()

	result, err := p.Execute(ctx, "policy.classify", map[string]interface{}{
		"url": "https://idp.example/login?code=abc",
	}, nil)
	if err != nil || !result.Success {
		t.Fatalf("Classify failed: %v", err)
	}
	verdict := result.Data["verdict"].(classify.Verdict)
	if !verdict.AuthRelated {
		t.Error("Expected login URL with code param to be auth-related")
	}
	if !result.Data["has_token_param"].(bool) {
		t.Error("Expected token param detection")
	}

	result, _ = p.Execute(ctx, "policy.classify", map[string]interface{}{
		"url": "https://news.example/today",
	}, nil)
	verdict = result.Data["verdict"].(classify.Verdict)
	if verdict.AuthRelated {
		t.Error("Expected plain URL to pass")
	}

	result, _ = p.Execute(ctx, "policy.classify", map[string]interface{}{}, nil)
	if result.Success {
		t.Error("Expected failure without url")
	}
}

func TestRulesCounts(t *testing.T) {
	classifier := classify.New()
	classifier.SetRules(&classify.Rules{
		ExtraKeywords: []string{"verify"},
		BypassHosts:   []string{"*.internal.example"},
	})
	p := NewProvider(classifier, nil)

	result, _ := p.Execute(context.Background(), "policy.rules", nil, nil)
	if !result.Success {
		t.Fatalf("Rules failed: %v", *result.Error)
	}
	counts := result.Data["counts"].(map[string]interface{})
	if counts["extra_keywords"].(int) != 1 {
		t.Errorf("Expected 1 extra keyword, got %v", counts["extra_keywords"])
	}
	if counts["bypass_hosts"].(int) != 1 {
		t.Errorf("Expected 1 bypass host, got %v", counts["bypass_hosts"])
	}
	rules := result.Data["rules"].(*classify.Rules)
	if rules.ExtraKeywords[0] != "verify" {
		t.Errorf("Expected active rules returned, got %+v", rules)
	}
}

func TestReloadWithoutReloader(t *testing.T) {
	p := newTestProvider(nil)

	result, _ := p.Execute(context.Background(), "policy.reload", nil, nil)
	if result.Success {
		t.Error("Expected reload to fail without a reloader")
	}
	if *result.Error != "rules reload not configured" {
		t.Errorf("Unexpected error: %s", *result.Error)
	}
}

func TestReload(t *testing.T) {
	reloader := &fakeReloader{}
	p := newTestProvider(reloader)
	ctx := context.Background()

	result, _ := p.Execute(ctx, "policy.reload", nil, nil)
	if !result.Success {
		t.Fatalf("Reload failed: %v", *result.Error)
	}
	if result.Data["path"].(string) != "/tmp/rules.yaml" {
		t.Errorf("Expected reloader path in result, got %v", result.Data["path"])
	}
	if reloader.calls != 1 {
		t.Errorf("Expected 1 reload call, got %d", reloader.calls)
	}

	reloader.err = errors.New("yaml: bad indent")
	result, _ = p.Execute(ctx, "policy.reload", nil, nil)
	if result.Success {
		t.Error("Expected reload error to surface as failure")
	}
}

func TestUnknownTool(t *testing.T) {
	p := newTestProvider(nil)

	result, _ := p.Execute(context.Background(), "policy.bogus", nil, nil)
	if result.Success {
		t.Error("Expected unknown tool to fail")
	}
}
