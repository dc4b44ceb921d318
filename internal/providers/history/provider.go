package history

import (
	"context"
	"fmt"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/history"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Provider exposes navigation history to the renderer
type Provider struct {
	store *history.Store
}

// NewProvider creates a history provider
func NewProvider(store *history.Store) *Provider {
	return &Provider{store: store}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "history",
		Name:        "History Service",
		Description: "Completed navigation history with batch attribution",
		Category:    types.CategoryHistory,
		Capabilities: []string{
			"list",
			"stats",
			"clear",
		},
		Tools: []types.Tool{
			{
				ID:          "history.list",
				Name:        "List History",
				Description: "List completed navigations in append order",
				Parameters: []types.Parameter{
					{Name: "limit", Type: "number", Description: "Maximum entries (0 = all)", Required: false},
					{Name: "offset", Type: "number", Description: "Skip from the oldest end", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "history.stats",
				Name:        "History Stats",
				Description: "Get history totals, drops, and per-batch counts",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "history.clear",
				Name:        "Clear History",
				Description: "Remove all retained entries",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a history operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "history.list":
		return p.list(params)
	case "history.stats":
		return p.stats()
	case "history.clear":
		return p.clear()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) list(params map[string]interface{}) (*types.Result, error) {
	limit := getInt(params, "limit", 0)
	offset := getInt(params, "offset", 0)

	entries := p.store.List(limit, offset)
	return success(map[string]interface{}{"entries": entries, "count": len(entries)})
}

func (p *Provider) stats() (*types.Result, error) {
	stats := p.store.Stats()
	return success(map[string]interface{}{
		"size":      stats.Size,
		"capacity":  stats.Capacity,
		"recorded":  stats.Recorded,
		"dropped":   stats.Dropped,
		"per_batch": stats.PerBatch,
	})
}

func (p *Provider) clear() (*types.Result, error) {
	p.store.Clear()
	return success(map[string]interface{}{"cleared": true})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

func getInt(params map[string]interface{}, key string, defaultVal int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultVal
	}
}
