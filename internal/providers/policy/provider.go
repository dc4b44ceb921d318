package policy

import (
	"context"
	"fmt"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Reloader forces a rules file reload
type Reloader interface {
	Reload() error
	Path() string
}

// Provider exposes the auth classifier and its rules
type Provider struct {
	classifier *classify.Classifier
	reloader   Reloader
}

// NewProvider creates a policy provider. reloader may be nil when
// rules come from a static file
func NewProvider(classifier *classify.Classifier, reloader Reloader) *Provider {
	return &Provider{classifier: classifier, reloader: reloader}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "policy",
		Name:        "Policy Service",
		Description: "Auth classification and navigation rule management",
		Category:    types.CategoryPolicy,
		Capabilities: []string{
			"classify",
			"rules",
			"hot_reload",
		},
		Tools: []types.Tool{
			{
				ID:          "policy.classify",
				Name:        "Classify URL",
				Description: "Run the auth heuristic against a URL",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "URL to classify", Required: true},
				},
				Returns: "Verdict",
			},
			{
				ID:          "policy.rules",
				Name:        "Get Rules",
				Description: "Get the active classifier rules",
				Parameters:  []types.Parameter{},
				Returns:     "Rules",
			},
			{
				ID:          "policy.reload",
				Name:        "Reload Rules",
				Description: "Reload the rules file immediately",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a policy operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "policy.classify":
		return p.classify(params)
	case "policy.rules":
		return p.rules()
	case "policy.reload":
		return p.reload()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) classify(params map[string]interface{}) (*types.Result, error) {
	rawURL, ok := params["url"].(string)
	if !ok || rawURL == "" {
		return failure("url parameter required")
	}

	verdict := p.classifier.Classify(rawURL)
	return success(map[string]interface{}{
		"url":             rawURL,
		"verdict":         verdict,
		"has_token_param": p.classifier.HasTokenParam(rawURL),
	})
}

func (p *Provider) rules() (*types.Result, error) {
	r := p.classifier.Rules()
	return success(map[string]interface{}{
		"rules": r,
		"counts": map[string]interface{}{
			"extra_keywords": len(r.ExtraKeywords),
			"extra_params":   len(r.ExtraParams),
			"bypass_hosts":   len(r.BypassHosts),
			"force_hosts":    len(r.ForceHosts),
		},
	})
}

func (p *Provider) reload() (*types.Result, error) {
	if p.reloader == nil {
		return failure("rules reload not configured")
	}
	if err := p.reloader.Reload(); err != nil {
		return failure(fmt.Sprintf("reload failed: %v", err))
	}
	return success(map[string]interface{}{
		"reloaded": true,
		"path":     p.reloader.Path(),
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
