package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Provider implements shell settings and preferences
type Provider struct {
	path  string
	mu    sync.Mutex // serializes file writes
	cache sync.Map
}

// Setting represents a configuration setting
type Setting struct {
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Type        string      `json:"type"` // "string", "number", "boolean", "json"
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`
}

// NewProvider creates a settings provider backed by a JSON file
func NewProvider(path string) *Provider {
	p := &Provider{path: path}
	p.initializeDefaults()
	return p
}

// Hydrate overlays persisted values from disk onto the defaults.
// A missing file is not an error
func (s *Provider) Hydrate() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var persisted map[string]Setting
	if err := sonic.Unmarshal(data, &persisted); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}

	for key, saved := range persisted {
		if val, ok := s.cache.Load(key); ok {
			// Known key: keep registered metadata, take the saved value
			setting := val.(Setting)
			setting.Value = saved.Value
			s.cache.Store(key, setting)
		} else {
			s.cache.Store(key, saved)
		}
	}
	return nil
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "settings",
		Name:        "Settings Service",
		Description: "Shell settings and preferences",
		Category:    types.CategorySettings,
		Capabilities: []string{
			"get",
			"set",
			"list",
			"reset",
			"export",
			"import",
		},
		Tools: []types.Tool{
			{
				ID:          "settings.get",
				Name:        "Get Setting",
				Description: "Get a setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
				},
				Returns: "Setting",
			},
			{
				ID:          "settings.set",
				Name:        "Set Setting",
				Description: "Set a setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
					{Name: "value", Type: "any", Description: "Setting value", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.list",
				Name:        "List Settings",
				Description: "List all settings optionally filtered by category",
				Parameters: []types.Parameter{
					{Name: "category", Type: "string", Description: "Category filter (optional)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "settings.reset",
				Name:        "Reset Setting",
				Description: "Reset a setting to its default value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.export",
				Name:        "Export Settings",
				Description: "Export all settings as JSON",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "settings.import",
				Name:        "Import Settings",
				Description: "Import settings from JSON",
				Parameters: []types.Parameter{
					{Name: "settings", Type: "object", Description: "Settings to import", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.categories",
				Name:        "List Categories",
				Description: "Get all setting categories",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
		},
	}
}

// Execute runs a settings operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "settings.get":
		return s.get(params)
	case "settings.set":
		return s.set(params)
	case "settings.list":
		return s.list(params)
	case "settings.reset":
		return s.reset(params)
	case "settings.export":
		return s.exportSettings()
	case "settings.import":
		return s.importSettings(params)
	case "settings.categories":
		return s.categories()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

// initializeDefaults registers the shell's known settings
func (s *Provider) initializeDefaults() {
	defaults := map[string]Setting{
		// General
		"general.theme":    {Key: "general.theme", Value: "dark", Type: "string", Category: "general", Description: "UI theme", Default: "dark"},
		"general.homepage": {Key: "general.homepage", Value: "", Type: "string", Category: "general", Description: "URL loaded in a fresh view", Default: ""},

		// Views
		"views.user_agent":         {Key: "views.user_agent", Value: "", Type: "string", Category: "views", Description: "User agent override (empty = platform default)", Default: ""},
		"views.open_in_background": {Key: "views.open_in_background", Value: false, Type: "boolean", Category: "views", Description: "Open new views without focusing them", Default: false},
		"views.cascade_offset":     {Key: "views.cascade_offset", Value: 32, Type: "number", Category: "views", Description: "Window cascade offset (px)", Default: 32},

		// Batches
		"batches.probe_on_submit": {Key: "batches.probe_on_submit", Value: false, Type: "boolean", Category: "batches", Description: "Preflight-check URLs when a batch is submitted", Default: false},
		"batches.confirm_over":    {Key: "batches.confirm_over", Value: 10, Type: "number", Category: "batches", Description: "Confirm before opening more URLs than this", Default: 10},

		// History
		"history.export_format": {Key: "history.export_format", Value: "json", Type: "string", Category: "history", Description: "Default export format (json or csv)", Default: "json"},

		// Notices
		"notices.show_window_denied": {Key: "notices.show_window_denied", Value: true, Type: "boolean", Category: "notices", Description: "Show a notice when a popup is denied", Default: true},
	}

	for k, v := range defaults {
		s.cache.Store(k, v)
	}
}

func (s *Provider) get(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	if val, ok := s.cache.Load(key); ok {
		setting := val.(Setting)
		return success(map[string]interface{}{
			"key":         setting.Key,
			"value":       setting.Value,
			"type":        setting.Type,
			"category":    setting.Category,
			"description": setting.Description,
			"default":     setting.Default,
		})
	}

	return failure(fmt.Sprintf("setting not found: %s", key))
}

func (s *Provider) set(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	value := params["value"]
	if value == nil {
		return failure("value parameter required")
	}

	// Preserve registered metadata when the key is known
	var setting Setting
	if val, ok := s.cache.Load(key); ok {
		setting = val.(Setting)
		setting.Value = value
	} else {
		setting = Setting{
			Key:      key,
			Value:    value,
			Type:     inferType(value),
			Category: "custom",
		}
	}

	s.cache.Store(key, setting)

	if err := s.persist(); err != nil {
		return failure(fmt.Sprintf("failed to persist setting: %v", err))
	}

	return success(map[string]interface{}{"stored": true, "key": key})
}

func (s *Provider) list(params map[string]interface{}) (*types.Result, error) {
	category, _ := params["category"].(string)

	var settings []Setting
	s.cache.Range(func(key, value interface{}) bool {
		setting := value.(Setting)
		if category == "" || setting.Category == category {
			settings = append(settings, setting)
		}
		return true
	})

	return success(map[string]interface{}{"settings": settings, "count": len(settings)})
}

func (s *Provider) reset(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	val, ok := s.cache.Load(key)
	if !ok {
		return failure(fmt.Sprintf("setting not found: %s", key))
	}

	setting := val.(Setting)
	setting.Value = setting.Default
	s.cache.Store(key, setting)

	if err := s.persist(); err != nil {
		return failure(fmt.Sprintf("failed to persist setting: %v", err))
	}

	return success(map[string]interface{}{"reset": true, "key": key, "value": setting.Default})
}

func (s *Provider) exportSettings() (*types.Result, error) {
	settings := make(map[string]interface{})

	s.cache.Range(func(key, value interface{}) bool {
		setting := value.(Setting)
		settings[setting.Key] = setting.Value
		return true
	})

	return success(map[string]interface{}{"settings": settings})
}

func (s *Provider) importSettings(params map[string]interface{}) (*types.Result, error) {
	settingsData, ok := params["settings"].(map[string]interface{})
	if !ok {
		return failure("settings parameter must be an object")
	}

	count := 0
	for key, value := range settingsData {
		result, err := s.set(map[string]interface{}{"key": key, "value": value})
		if err == nil && result.Success {
			count++
		}
	}

	return success(map[string]interface{}{"imported": count})
}

func (s *Provider) categories() (*types.Result, error) {
	categorySet := make(map[string]bool)

	s.cache.Range(func(key, value interface{}) bool {
		setting := value.(Setting)
		categorySet[setting.Category] = true
		return true
	})

	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}

	return success(map[string]interface{}{"categories": categories})
}

// persist writes the full settings map to disk
func (s *Provider) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make(map[string]Setting)
	s.cache.Range(func(_, value interface{}) bool {
		setting := value.(Setting)
		all[setting.Key] = setting
		return true
	})

	data, err := sonic.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Helper functions
func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	errMsg := message
	return &types.Result{Success: false, Error: &errMsg}, nil
}

func inferType(value interface{}) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	default:
		return "json"
	}
}
