package view

import (
	"strings"
	"sync"

	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// CookieJar holds the cookie records the engine reported for one view.
// The engine owns the real cookie store; these records exist so the
// renderer can show them and the user can clear them per view.
type CookieJar struct {
	mu       sync.RWMutex
	byDomain map[string][]types.Cookie
}

// NewCookieJar creates an empty jar
func NewCookieJar() *CookieJar {
	return &CookieJar{
		byDomain: make(map[string][]types.Cookie),
	}
}

// Set stores a cookie record, replacing any record with the same
// domain, name, and path
func (j *CookieJar) Set(c types.Cookie) {
	domain := normalizeDomain(c.Domain)
	if domain == "" {
		return
	}
	c.Domain = domain

	j.mu.Lock()
	defer j.mu.Unlock()

	cookies := j.byDomain[domain]
	for i, existing := range cookies {
		if existing.Name == c.Name && existing.Path == c.Path {
			cookies[i] = c
			return
		}
	}
	j.byDomain[domain] = append(cookies, c)
}

// List returns cookie records, all domains when domain is empty
func (j *CookieJar) List(domain string) []types.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if domain != "" {
		cookies := j.byDomain[normalizeDomain(domain)]
		out := make([]types.Cookie, len(cookies))
		copy(out, cookies)
		return out
	}

	var out []types.Cookie
	for _, cookies := range j.byDomain {
		out = append(out, cookies...)
	}
	return out
}

// Clear removes cookie records, all domains when domain is empty.
// Returns the number of removed records.
func (j *CookieJar) Clear(domain string) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	if domain != "" {
		key := normalizeDomain(domain)
		n := len(j.byDomain[key])
		delete(j.byDomain, key)
		return n
	}

	n := 0
	for _, cookies := range j.byDomain {
		n += len(cookies)
	}
	j.byDomain = make(map[string][]types.Cookie)
	return n
}

// Len returns the total number of cookie records
func (j *CookieJar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := 0
	for _, cookies := range j.byDomain {
		n += len(cookies)
	}
	return n
}

// normalizeDomain lowercases and strips the leading dot cookie domains
// often carry
func normalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
}
