package auth

import "strings"

// Scope suffixes. A ReadWrite grant covers the corresponding Read scope, so
// least-privilege agents that only hold Read fail write checks while
// broader grants still pass read checks.
const (
	scopeReadSuffix      = ".Read"
	scopeReadWriteSuffix = ".ReadWrite"
)

// HasScope reports whether the granted scopes satisfy required. A scope is
// satisfied by an exact match, or, for a Read scope, by the matching
// ReadWrite grant.
func HasScope(granted []string, required string) bool {
	for _, g := range granted {
		if g == required {
			return true
		}
	}

	if strings.HasSuffix(required, scopeReadSuffix) {
		wider := strings.TrimSuffix(required, scopeReadSuffix) + scopeReadWriteSuffix
		for _, g := range granted {
			if g == wider {
				return true
			}
		}
	}

	return false
}

// MissingScopes returns the required scopes not satisfied by granted.
// Useful for error messages when a token is under-privileged.
func MissingScopes(granted, required []string) []string {
	var missing []string
	for _, r := range required {
		if !HasScope(granted, r) {
			missing = append(missing, r)
		}
	}
	return missing
}
