package classify

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rules extends the built-in auth heuristic. The base keyword and
// parameter sets are always active; rules only add signals or exempt
// hosts. An empty Rules value leaves the heuristic unchanged.
type Rules struct {
	// ExtraKeywords are additional substrings that count as auth markers
	ExtraKeywords []string `yaml:"extra_keywords" json:"extra_keywords,omitempty"`

	// ExtraParams are additional query/fragment parameter names that
	// count as token markers
	ExtraParams []string `yaml:"extra_params" json:"extra_params,omitempty"`

	// BypassHosts are glob patterns for hosts that are never classified
	// as auth-related (e.g. "*.internal.example")
	BypassHosts []string `yaml:"bypass_hosts" json:"bypass_hosts,omitempty"`

	// ForceHosts are glob patterns for hosts where the keyword check is
	// considered satisfied. A token parameter is still required.
	ForceHosts []string `yaml:"force_hosts" json:"force_hosts,omitempty"`
}

// DefaultRules returns rules that leave the base heuristic unchanged
func DefaultRules() *Rules {
	return &Rules{}
}

// Validate checks glob patterns and signal entries
func (r *Rules) Validate() error {
	for _, pattern := range r.BypassHosts {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid bypass_hosts pattern: %q", pattern)
		}
	}
	for _, pattern := range r.ForceHosts {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid force_hosts pattern: %q", pattern)
		}
	}
	for _, kw := range r.ExtraKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("extra_keywords entries cannot be blank")
		}
	}
	for _, p := range r.ExtraParams {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("extra_params entries cannot be blank")
		}
	}
	return nil
}

// compiled is the lookup-ready form of the base heuristic plus rules.
// It is built once per rules swap so Classify never re-normalizes.
// Signal lists keep base-first order so verdicts are deterministic.
type compiled struct {
	keywords []string
	params   []string
	bypass   []string
	force    []string
}

func compile(r *Rules) *compiled {
	if r == nil {
		r = DefaultRules()
	}

	c := &compiled{
		keywords: make([]string, 0, len(baseKeywords)+len(r.ExtraKeywords)),
		params:   make([]string, 0, len(baseParams)+len(r.ExtraParams)),
	}

	c.keywords = append(c.keywords, baseKeywords...)
	for _, kw := range r.ExtraKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && !contains(c.keywords, kw) {
			c.keywords = append(c.keywords, kw)
		}
	}

	c.params = append(c.params, baseParams...)
	for _, p := range r.ExtraParams {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !contains(c.params, p) {
			c.params = append(c.params, p)
		}
	}

	c.bypass = append(c.bypass, r.BypassHosts...)
	c.force = append(c.force, r.ForceHosts...)

	return c
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func matchHost(patterns []string, host string) bool {
	if host == "" {
		return false
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(strings.ToLower(pattern), host); err == nil && ok {
			return true
		}
	}
	return false
}
