package classify

import (
	"net/url"
	"strings"
	"sync/atomic"
)

// Base signal sets. These are a heuristic: keyword containment plus a
// token-style parameter, both required. They are never removed by rules.
var (
	baseKeywords = []string{"auth", "oauth", "signin", "login", "sso", "callback"}
	baseParams   = []string{"token", "code", "access_token"}
)

// Verdict is the classification result for a single URL
type Verdict struct {
	AuthRelated bool   `json:"auth_related"`
	Keyword     string `json:"keyword,omitempty"`
	Param       string `json:"param,omitempty"`
}

// Classifier decides whether a URL looks like part of an auth flow.
// Classify is pure: no I/O, no state mutation, and safe for concurrent
// use. Rules swaps are atomic and take effect on the next call.
type Classifier struct {
	rules    atomic.Pointer[Rules]
	compiled atomic.Pointer[compiled]
}

// New creates a classifier with the base heuristic only
func New() *Classifier {
	c := &Classifier{}
	c.SetRules(DefaultRules())
	return c
}

// SetRules replaces the active rules. Nil resets to the base heuristic.
func (c *Classifier) SetRules(r *Rules) {
	if r == nil {
		r = DefaultRules()
	}
	c.rules.Store(r)
	c.compiled.Store(compile(r))
}

// Rules returns the active rules
func (c *Classifier) Rules() *Rules {
	return c.rules.Load()
}

// IsAuthRelated reports whether a URL looks like part of an auth flow
func (c *Classifier) IsAuthRelated(rawURL string) bool {
	return c.Classify(rawURL).AuthRelated
}

// HasTokenParam reports whether a URL carries a recognized token-style
// parameter in its query or fragment, regardless of keywords. The
// policy uses this to detect the landing of an auth flow.
func (c *Classifier) HasTokenParam(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return firstTokenParam(parsed, c.compiled.Load().params) != ""
}

// Classify evaluates the auth heuristic for one URL.
//
// A URL is auth-related when it contains an auth keyword (anywhere in
// the URL, case-insensitive) AND carries a token-style parameter in its
// query or fragment. Malformed URLs are never auth-related; they fall
// through to ordinary navigation rather than being intercepted.
func (c *Classifier) Classify(rawURL string) Verdict {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Verdict{}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Verdict{}
	}

	rules := c.compiled.Load()
	host := strings.ToLower(parsed.Hostname())

	if matchHost(rules.bypass, host) {
		return Verdict{}
	}

	lower := strings.ToLower(rawURL)
	keyword := ""
	for _, kw := range rules.keywords {
		if strings.Contains(lower, kw) {
			keyword = kw
			break
		}
	}
	if keyword == "" {
		if !matchHost(rules.force, host) {
			return Verdict{}
		}
		keyword = "host-rule"
	}

	param := firstTokenParam(parsed, rules.params)
	if param == "" {
		return Verdict{}
	}

	return Verdict{AuthRelated: true, Keyword: keyword, Param: param}
}

// firstTokenParam scans query then fragment parameters for a token
// marker. Parameter names compare case-insensitively; presence counts
// even with an empty value.
func firstTokenParam(u *url.URL, ordered []string) string {
	if name := scanParams(u.RawQuery, ordered); name != "" {
		return name
	}

	// Implicit-flow responses put the token in the fragment, either
	// directly (#access_token=...) or behind an SPA route
	// (#/callback?access_token=...).
	frag := u.Fragment
	if i := strings.IndexByte(frag, '?'); i >= 0 {
		frag = frag[i+1:]
	}
	return scanParams(frag, ordered)
}

func scanParams(encoded string, ordered []string) string {
	if encoded == "" {
		return ""
	}
	// url.ParseQuery reports errors for stray escapes but still returns
	// what it parsed; use the partial result.
	values, _ := url.ParseQuery(encoded)
	if len(values) == 0 {
		return ""
	}
	present := make(map[string]struct{}, len(values))
	for name := range values {
		present[strings.ToLower(name)] = struct{}{}
	}
	for _, name := range ordered {
		if _, ok := present[name]; ok {
			return name
		}
	}
	return ""
}
