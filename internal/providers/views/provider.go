package views

import (
	"context"
	"fmt"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/view"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Provider exposes view session operations to the renderer
type Provider struct {
	views *view.Manager
}

// NewProvider creates a views provider
func NewProvider(views *view.Manager) *Provider {
	return &Provider{views: views}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "views",
		Name:        "View Service",
		Description: "Embedded view session lifecycle and cookie records",
		Category:    types.CategoryViews,
		Capabilities: []string{
			"open",
			"focus",
			"close",
			"cookies",
			"window_state",
		},
		Tools: []types.Tool{
			{
				ID:          "views.open",
				Name:        "Open View",
				Description: "Open a new view for a URL",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "URL to open", Required: true},
					{Name: "background", Type: "boolean", Description: "Open without taking focus", Required: false},
					{Name: "user_agent", Type: "string", Description: "User agent override", Required: false},
				},
				Returns: "View",
			},
			{
				ID:          "views.get",
				Name:        "Get View",
				Description: "Get a view by ID",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
				},
				Returns: "View",
			},
			{
				ID:          "views.list",
				Name:        "List Views",
				Description: "List views, optionally filtered by state",
				Parameters: []types.Parameter{
					{Name: "state", Type: "string", Description: "State filter (active/background)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "views.focus",
				Name:        "Focus View",
				Description: "Bring a view to foreground",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "views.close",
				Name:        "Close View",
				Description: "Close a view and clear its cookie records",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "views.stats",
				Name:        "View Stats",
				Description: "Get view manager statistics",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "views.cookies",
				Name:        "List Cookies",
				Description: "List cookie records for a view",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
					{Name: "domain", Type: "string", Description: "Domain filter", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "views.clear_cookies",
				Name:        "Clear Cookies",
				Description: "Clear cookie records for a view",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
					{Name: "domain", Type: "string", Description: "Domain filter (empty clears all)", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "views.set_window",
				Name:        "Set Window Bounds",
				Description: "Record window position and size for a view",
				Parameters: []types.Parameter{
					{Name: "view_id", Type: "string", Description: "View ID", Required: true},
					{Name: "x", Type: "number", Description: "Window X", Required: false},
					{Name: "y", Type: "number", Description: "Window Y", Required: false},
					{Name: "width", Type: "number", Description: "Window width", Required: false},
					{Name: "height", Type: "number", Description: "Window height", Required: false},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a view operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "views.open":
		return p.open(params)
	case "views.get":
		return p.get(params)
	case "views.list":
		return p.list(params)
	case "views.focus":
		return p.focus(params)
	case "views.close":
		return p.close(params)
	case "views.stats":
		return p.stats()
	case "views.cookies":
		return p.cookies(params)
	case "views.clear_cookies":
		return p.clearCookies(params)
	case "views.set_window":
		return p.setWindow(params)
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) open(params map[string]interface{}) (*types.Result, error) {
	url, ok := params["url"].(string)
	if !ok || url == "" {
		return failure("url parameter required")
	}

	background, _ := params["background"].(bool)
	userAgent, _ := params["user_agent"].(string)

	v := p.views.Open(url, view.OpenOptions{
		Background: background,
		UserAgent:  userAgent,
	})

	return success(map[string]interface{}{"view": v})
}

func (p *Provider) get(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	v, found := p.views.Get(viewID)
	if !found {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}
	return success(map[string]interface{}{"view": v})
}

func (p *Provider) list(params map[string]interface{}) (*types.Result, error) {
	var state *types.State
	if s, ok := params["state"].(string); ok && s != "" {
		st := types.State(s)
		switch st {
		case types.StateActive, types.StateBackground, types.StateClosed:
			state = &st
		default:
			return failure(fmt.Sprintf("unknown state: %s", s))
		}
	}

	views := p.views.List(state)
	return success(map[string]interface{}{"views": views, "count": len(views)})
}

func (p *Provider) focus(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	if !p.views.Focus(viewID) {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}
	return success(map[string]interface{}{"focused": true, "view_id": viewID})
}

func (p *Provider) close(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	if !p.views.Close(viewID) {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}
	return success(map[string]interface{}{"closed": true, "view_id": viewID})
}

func (p *Provider) stats() (*types.Result, error) {
	stats := p.views.Stats()
	return success(map[string]interface{}{
		"total_views":      stats.TotalViews,
		"active_views":     stats.ActiveViews,
		"background_views": stats.BackgroundViews,
		"focused_view_id":  stats.FocusedViewID,
	})
}

func (p *Provider) cookies(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	session, found := p.views.Session(viewID)
	if !found {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}

	domain, _ := params["domain"].(string)
	cookies := session.Cookies().List(domain)
	return success(map[string]interface{}{"cookies": cookies, "count": len(cookies)})
}

func (p *Provider) clearCookies(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	session, found := p.views.Session(viewID)
	if !found {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}

	domain, _ := params["domain"].(string)
	cleared := session.Cookies().Clear(domain)
	return success(map[string]interface{}{"cleared": cleared})
}

func (p *Provider) setWindow(params map[string]interface{}) (*types.Result, error) {
	viewID, ok := params["view_id"].(string)
	if !ok || viewID == "" {
		return failure("view_id parameter required")
	}

	var pos *types.WindowPosition
	if x, okX := getInt(params, "x"); okX {
		if y, okY := getInt(params, "y"); okY {
			pos = &types.WindowPosition{X: x, Y: y}
		}
	}

	var size *types.WindowSize
	if w, okW := getInt(params, "width"); okW {
		if h, okH := getInt(params, "height"); okH {
			size = &types.WindowSize{Width: w, Height: h}
		}
	}

	if pos == nil && size == nil {
		return failure("window bounds required")
	}

	if !p.views.UpdateWindow(viewID, pos, size) {
		return failure(fmt.Sprintf("view not found: %s", viewID))
	}
	return success(map[string]interface{}{"updated": true, "view_id": viewID})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}

func getInt(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
