package batches

import (
	"context"
	"errors"
	"fmt"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/batch"
	"github.com/ladyblueumd/url-opener-v2/internal/probe"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Provider exposes batch submission and opening to the renderer
type Provider struct {
	batches *batch.Manager
	prober  *probe.Prober
}

// NewProvider creates a batches provider
func NewProvider(batches *batch.Manager, prober *probe.Prober) *Provider {
	return &Provider{batches: batches, prober: prober}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "batches",
		Name:        "Batch Service",
		Description: "Batch URL submission, preflight probing, and opening",
		Category:    types.CategoryBatches,
		Capabilities: []string{
			"submit",
			"open",
			"probe",
			"duplicate_detection",
			"progress",
		},
		Tools: []types.Tool{
			{
				ID:          "batches.submit",
				Name:        "Submit Batch",
				Description: "Submit a list of URLs as a batch",
				Parameters: []types.Parameter{
					{Name: "urls", Type: "array", Description: "URLs to open", Required: true},
					{Name: "note", Type: "string", Description: "Batch note", Required: false},
					{Name: "force", Type: "boolean", Description: "Accept a duplicate list", Required: false},
				},
				Returns: "Batch",
			},
			{
				ID:          "batches.open",
				Name:        "Open Batch",
				Description: "Dispatch pending batch URLs to views",
				Parameters: []types.Parameter{
					{Name: "batch_id", Type: "string", Description: "Batch ID", Required: true},
					{Name: "target", Type: "string", Description: "View to load into (empty = new views)", Required: false},
				},
				Returns: "Batch",
			},
			{
				ID:          "batches.probe",
				Name:        "Probe Batch",
				Description: "Preflight-check pending batch URLs",
				Parameters: []types.Parameter{
					{Name: "batch_id", Type: "string", Description: "Batch ID", Required: true},
				},
				Returns: "Batch",
			},
			{
				ID:          "batches.get",
				Name:        "Get Batch",
				Description: "Get a batch with per-URL outcomes",
				Parameters: []types.Parameter{
					{Name: "batch_id", Type: "string", Description: "Batch ID", Required: true},
				},
				Returns: "Batch",
			},
			{
				ID:          "batches.list",
				Name:        "List Batches",
				Description: "List submitted batches with progress",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "batches.delete",
				Name:        "Delete Batch",
				Description: "Forget a batch and free its duplicate fingerprint",
				Parameters: []types.Parameter{
					{Name: "batch_id", Type: "string", Description: "Batch ID", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "batches.stats",
				Name:        "Batch Stats",
				Description: "Get batch totals",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a batch operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "batches.submit":
		return p.submit(params)
	case "batches.open":
		return p.open(params)
	case "batches.probe":
		return p.probeURLs(ctx, params)
	case "batches.get":
		return p.get(params)
	case "batches.list":
		return p.list()
	case "batches.delete":
		return p.delete(params)
	case "batches.stats":
		return p.stats()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) submit(params map[string]interface{}) (*types.Result, error) {
	urls, ok := getStringSlice(params, "urls")
	if !ok || len(urls) == 0 {
		return failure("urls parameter required")
	}

	note, _ := params["note"].(string)
	force, _ := params["force"].(bool)

	b, err := p.batches.Submit(urls, batch.SubmitOptions{Note: note, Force: force})
	if err != nil {
		if errors.Is(err, batch.ErrDuplicate) {
			return failure(fmt.Sprintf("duplicate batch: %v", err))
		}
		return failure(fmt.Sprintf("submit failed: %v", err))
	}

	return success(map[string]interface{}{"batch": b})
}

func (p *Provider) open(params map[string]interface{}) (*types.Result, error) {
	batchID, ok := params["batch_id"].(string)
	if !ok || batchID == "" {
		return failure("batch_id parameter required")
	}

	var target *string
	if t, ok := params["target"].(string); ok && t != "" {
		target = &t
	}

	b, err := p.batches.Open(batchID, target)
	if err != nil {
		return failure(fmt.Sprintf("open failed: %v", err))
	}

	return success(map[string]interface{}{"batch": b, "progress": b.Progress()})
}

// probeURLs preflight-checks the batch's pending URLs and attaches
// the results so unreachable ones are skipped at open time
func (p *Provider) probeURLs(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	batchID, ok := params["batch_id"].(string)
	if !ok || batchID == "" {
		return failure("batch_id parameter required")
	}
	if p.prober == nil {
		return failure("probe not configured")
	}

	b, found := p.batches.Get(batchID)
	if !found {
		return failure(fmt.Sprintf("batch not found: %s", batchID))
	}

	urls := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Status == types.ItemPending {
			urls = append(urls, item.URL)
		}
	}
	if len(urls) == 0 {
		return success(map[string]interface{}{"batch": b, "probed": 0})
	}

	results := p.prober.Run(ctx, urls)
	if err := p.batches.AttachProbe(batchID, results); err != nil {
		return failure(fmt.Sprintf("attach probe failed: %v", err))
	}

	updated, _ := p.batches.Get(batchID)
	return success(map[string]interface{}{"batch": updated, "probed": len(results)})
}

func (p *Provider) get(params map[string]interface{}) (*types.Result, error) {
	batchID, ok := params["batch_id"].(string)
	if !ok || batchID == "" {
		return failure("batch_id parameter required")
	}

	b, found := p.batches.Get(batchID)
	if !found {
		return failure(fmt.Sprintf("batch not found: %s", batchID))
	}
	return success(map[string]interface{}{"batch": b, "progress": b.Progress()})
}

func (p *Provider) list() (*types.Result, error) {
	batches := p.batches.List()
	return success(map[string]interface{}{"batches": batches, "count": len(batches)})
}

func (p *Provider) delete(params map[string]interface{}) (*types.Result, error) {
	batchID, ok := params["batch_id"].(string)
	if !ok || batchID == "" {
		return failure("batch_id parameter required")
	}

	if !p.batches.Delete(batchID) {
		return failure(fmt.Sprintf("batch not found: %s", batchID))
	}
	return success(map[string]interface{}{"deleted": true, "batch_id": batchID})
}

func (p *Provider) stats() (*types.Result, error) {
	stats := p.batches.Stats()
	return success(map[string]interface{}{
		"total_batches": stats.TotalBatches,
		"total_urls":    stats.TotalURLs,
		"opened_urls":   stats.OpenedURLs,
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

func getStringSlice(params map[string]interface{}, key string) ([]string, bool) {
	switch v := params[key].(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}
