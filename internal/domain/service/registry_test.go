package service

import (
	"context"
	"testing"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

type mockProvider struct {
	id string
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for testing",
		Category:     types.CategoryViews,
		Capabilities: []string{"open", "close"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"tool": toolID},
	}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{id: "views"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("views"); !ok {
		t.Error("Service should be registered")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockProvider{}); err == nil {
		t.Error("Expected empty service ID to be rejected")
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})

	r.Unregister("views")
	if _, ok := r.Get("views"); ok {
		t.Error("Service should be unregistered")
	}
}

func TestList(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})
	r.Register(&mockProvider{id: "history"})

	services := r.List(nil)
	if len(services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(services))
	}

	// Sorted by ID for stable REST responses
	if services[0].ID != "history" || services[1].ID != "views" {
		t.Error("Expected services sorted by ID")
	}

	cat := types.CategoryViews
	filtered := r.List(&cat)
	if len(filtered) != 2 {
		t.Errorf("Expected 2 views services, got %d", len(filtered))
	}
}

func TestDiscover(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})

	results := r.Discover("views open close", 5)
	if len(results) == 0 {
		t.Fatal("Should discover views service")
	}

	if results[0].ID != "views" {
		t.Errorf("Expected views service, got %s", results[0].ID)
	}

	if len(r.Discover("completely unrelated quux", 5)) != 0 {
		t.Error("Expected no matches for unrelated query")
	}
}

func TestExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})

	ctx := context.Background()
	result, err := r.Execute(ctx, "views.test", map[string]interface{}{}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Error("Expected successful execution")
	}

	if result.Data["tool"] != "views.test" {
		t.Error("Expected full tool ID passed through to provider")
	}
}

func TestExecuteBadToolID(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})

	ctx := context.Background()

	result, err := r.Execute(ctx, "no-dot", nil, nil)
	if err == nil {
		t.Error("Expected error for malformed tool ID")
	}
	if result == nil || result.Success {
		t.Error("Expected failure result for malformed tool ID")
	}

	result, err = r.Execute(ctx, "missing.tool", nil, nil)
	if err == nil {
		t.Error("Expected error for unknown service")
	}
	if result == nil || result.Error == nil {
		t.Error("Expected failure result for unknown service")
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "views"})
	r.Register(&mockProvider{id: "history"})

	stats := r.Stats()
	if stats["total_services"].(int) != 2 {
		t.Errorf("Expected 2 total services, got %v", stats["total_services"])
	}

	if stats["total_tools"].(int) != 2 {
		t.Errorf("Expected 2 total tools, got %v", stats["total_tools"])
	}
}
