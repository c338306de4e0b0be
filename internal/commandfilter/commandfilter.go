// Package commandfilter rejects shell commands matching an operator-
// configured blocklist before they reach the bash tool.
package commandfilter

import "strings"

// Check reports whether command matches any blocked pattern. Matching is
// a case-insensitive substring test against the trimmed command, and the
// first pattern that matches wins - this is deliberately not a regex
// engine, since the config is operator-authored and meant to be read at a
// glance.
func Check(command string, blockedPatterns []string) (blocked bool, matched string) {
	normalized := strings.ToLower(strings.TrimSpace(command))
	for _, pattern := range blockedPatterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			continue
		}
		if strings.Contains(normalized, p) {
			return true, pattern
		}
	}
	return false, ""
}
