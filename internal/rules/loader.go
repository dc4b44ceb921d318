// Package rules loads classifier rule files and hot-reloads them on
// change. Rule files are YAML; every load is validated before the swap,
// and a file that fails validation leaves the active rules untouched.
package rules

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
)

// Load reads and validates the rules file at path
func Load(path string) (*classify.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rules document
func Parse(data []byte) (*classify.Rules, error) {
	var r classify.Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &r, nil
}
