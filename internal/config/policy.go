package config

import "strings"

// VerifyPolicy decides whether a hub whose identity cannot be fetched is kept
type VerifyPolicy string

const (
	// PolicyFailOpen trusts the hub listing when verification is unreachable
	PolicyFailOpen VerifyPolicy = "fail-open"
	// PolicyFailClosed drops hubs that cannot be verified
	PolicyFailClosed VerifyPolicy = "fail-closed"
)

// ParseVerifyPolicy parses a policy name. Unknown names return ok=false and
// the trimmed input, which Valid rejects.
func ParseVerifyPolicy(s string) (VerifyPolicy, bool) {
	name := strings.TrimSpace(s)
	switch strings.ToLower(name) {
	case "fail-open", "open", "lenient":
		return PolicyFailOpen, true
	case "fail-closed", "closed", "strict":
		return PolicyFailClosed, true
	default:
		return VerifyPolicy(name), false
	}
}

// FailOpen reports whether unreachable verification counts as verified
func (p VerifyPolicy) FailOpen() bool {
	return p != PolicyFailClosed
}

// Valid reports whether p is a known policy
func (p VerifyPolicy) Valid() bool {
	return p == PolicyFailOpen || p == PolicyFailClosed
}
