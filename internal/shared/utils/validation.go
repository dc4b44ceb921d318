package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// JSON size limits (in bytes)
const (
	MaxJSONSize  = 1 * 1024 * 1024 // 1MB - maximum JSON payload size
	MaxEventSize = 64 * 1024       // 64KB - single engine event size limit
)

// String length limits
const (
	MaxURLLength          = 8 * 1024 // browsers truncate far beyond this
	MaxIDLength           = 128
	MaxNameLength         = 256
	MaxNoteLength         = 2048
	MaxNoticeLength       = 1024
	MaxUserAgentLength    = 512
	MaxBatchURLs          = 1000
	MaxSettingKeyLength   = 128
	MaxSettingValueLength = 4096
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (for service.tool format)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// SettingKeyPattern allows dotted lowercase keys (e.g. "browser.user_agent")
	SettingKeyPattern = regexp.MustCompile(`^[a-z0-9_.]+$`)
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the default 1MB limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxJSONSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}

	// Validate it's valid JSON
	var js interface{}
	if err := json.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateToolID validates a tool ID field (allows dots for service.tool format)
func ValidateToolID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateURL validates a URL field for API entry points. This is a
// transport-level check only; classification never rejects URLs.
func ValidateURL(rawURL, fieldName string, required bool) error {
	if err := ValidateString(rawURL, fieldName, 1, MaxURLLength, required); err != nil {
		return err
	}

	if rawURL == "" {
		return nil
	}

	// Reject schemes the embedded view must never be asked to load
	lower := strings.ToLower(strings.TrimSpace(rawURL))
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return fmt.Errorf("%s uses a forbidden scheme", fieldName)
		}
	}

	return nil
}

// ValidateBatchURLs validates a submitted URL list
func ValidateBatchURLs(urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("url list is empty")
	}
	if len(urls) > MaxBatchURLs {
		return fmt.Errorf("too many urls (maximum %d)", MaxBatchURLs)
	}

	for i, u := range urls {
		if err := ValidateURL(u, fmt.Sprintf("urls[%d]", i), true); err != nil {
			return err
		}
	}

	return nil
}

// ValidateName validates a name field
func ValidateName(name, fieldName string) error {
	return ValidateString(name, fieldName, 1, MaxNameLength, true)
}

// ValidateSettingKey validates a settings key
func ValidateSettingKey(key string) error {
	if err := ValidateString(key, "key", 1, MaxSettingKeyLength, true); err != nil {
		return err
	}

	if !SettingKeyPattern.MatchString(key) {
		return fmt.Errorf("key must contain only lowercase letters, numbers, dots, and underscores")
	}

	return nil
}
