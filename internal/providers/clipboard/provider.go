package clipboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/atotto/clipboard"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Provider implements OS clipboard access for the renderer
type Provider struct{}

// NewProvider creates a clipboard provider
func NewProvider() *Provider {
	return &Provider{}
}

// Definition returns service metadata
func (c *Provider) Definition() types.Service {
	return types.Service{
		ID:          "clipboard",
		Name:        "Clipboard Service",
		Description: "OS clipboard access and pasted URL extraction",
		Category:    types.CategoryClipboard,
		Capabilities: []string{
			"copy",
			"read",
			"url_extraction",
		},
		Tools: []types.Tool{
			{
				ID:          "clipboard.copy",
				Name:        "Copy to Clipboard",
				Description: "Copy text to the OS clipboard",
				Parameters: []types.Parameter{
					{Name: "text", Type: "string", Description: "Text to copy", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "clipboard.read",
				Name:        "Read Clipboard",
				Description: "Read text from the OS clipboard",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "clipboard.read_urls",
				Name:        "Read Clipboard URLs",
				Description: "Extract http(s) URLs from the clipboard text",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "clipboard.clear",
				Name:        "Clear Clipboard",
				Description: "Clear the OS clipboard",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a clipboard operation
func (c *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	if clipboard.Unsupported {
		return failure("clipboard unavailable on this platform")
	}

	switch toolID {
	case "clipboard.copy":
		return c.copy(params)
	case "clipboard.read":
		return c.read()
	case "clipboard.read_urls":
		return c.readURLs()
	case "clipboard.clear":
		return c.clear()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (c *Provider) copy(params map[string]interface{}) (*types.Result, error) {
	text, ok := params["text"].(string)
	if !ok || text == "" {
		return failure("text parameter required")
	}

	if err := clipboard.WriteAll(text); err != nil {
		return failure(fmt.Sprintf("copy failed: %v", err))
	}
	return success(map[string]interface{}{"copied": true, "length": len(text)})
}

func (c *Provider) read() (*types.Result, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return failure(fmt.Sprintf("read failed: %v", err))
	}
	return success(map[string]interface{}{"text": text, "length": len(text)})
}

func (c *Provider) readURLs() (*types.Result, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return failure(fmt.Sprintf("read failed: %v", err))
	}

	urls := ExtractURLs(text)
	return success(map[string]interface{}{"urls": urls, "count": len(urls)})
}

func (c *Provider) clear() (*types.Result, error) {
	if err := clipboard.WriteAll(""); err != nil {
		return failure(fmt.Sprintf("clear failed: %v", err))
	}
	return success(map[string]interface{}{"cleared": true})
}

// ExtractURLs pulls http(s) URLs out of pasted text. Tokens split on
// whitespace and commas; surrounding quotes and angle brackets are
// stripped so URLs copied from markup or email survive
func ExtractURLs(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	urls := make([]string, 0, len(fields))
	for _, field := range fields {
		candidate := strings.Trim(field, `"'<>`)
		parsed, err := url.Parse(candidate)
		if err != nil {
			continue
		}
		if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
			urls = append(urls, candidate)
		}
	}
	return urls
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	errMsg := message
	return &types.Result{Success: false, Error: &errMsg}, nil
}
