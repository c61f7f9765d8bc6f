package handler

import (
	"net/url"
	"strings"
)

// ScopeGuard limits which scopes a client may ask the server to resolve.
// Requests carry the server's directory token, so only known hosts are reached.
type ScopeGuard struct {
	origins map[string]bool
}

// NewScopeGuard accepts the scheme and host of each allowed URL. Entries that
// are not absolute URLs are ignored.
func NewScopeGuard(allowed ...string) *ScopeGuard {
	g := &ScopeGuard{origins: make(map[string]bool, len(allowed))}
	for _, a := range allowed {
		if key, ok := originKey(a); ok {
			g.origins[key] = true
		}
	}
	return g
}

// Allows reports whether scope is an http(s) URL on an allowed origin
func (g *ScopeGuard) Allows(scope string) bool {
	key, ok := originKey(scope)
	return ok && g.origins[key]
}

func originKey(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || u.User != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	return scheme + "://" + strings.ToLower(u.Host), true
}
