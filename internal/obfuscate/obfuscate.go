// Package obfuscate centralizes redaction helpers for credentials that show up
// in logs and CLI output.
package obfuscate

import (
	"strings"
)

// ObfuscateTokenGeneric obfuscates arbitrary token-like strings for display/logging.
// - length <= 4  → all asterisks of same length
// - 5..12        → keep first 2 characters, replace the rest with asterisks
// - > 12         → keep first 8 characters, then "...", then last 4 characters
func ObfuscateTokenGeneric(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	if len(s) <= 12 {
		return s[:2] + strings.Repeat("*", len(s)-2)
	}
	return s[:8] + "..." + s[len(s)-4:]
}

// ObfuscateAuthorization redacts the credential of an Authorization header
// value while keeping its scheme, e.g. "token ghs_abcd...wxyz".
func ObfuscateAuthorization(header string) string {
	scheme, cred, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return ObfuscateTokenGeneric(scheme)
	}
	return scheme + " " + ObfuscateTokenGeneric(strings.TrimSpace(cred))
}
