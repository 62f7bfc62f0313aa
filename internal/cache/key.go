// Package cache stores upstream metrics payloads under keys bound to the
// caller's credential, so one identity never observes another's data.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// FingerprintLength is the number of hex characters kept from the digest.
const FingerprintLength = 16

// Fingerprint returns the truncated SHA-256 of an Authorization header value.
func Fingerprint(authHeader string) string {
	sum := sha256.Sum256([]byte(authHeader))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// BuildKey derives the cache key "fingerprint:path?query" for a request.
// Any query embedded in path is merged with params, params winning. Nil and
// empty values are dropped, slices are joined with commas in their given
// order, and keys are sorted so equivalent inputs produce the same key.
func BuildKey(path string, params map[string]any, authHeader string) string {
	rawPath, embedded, _ := strings.Cut(path, "?")

	merged := parseEmbedded(embedded)
	for k, v := range params {
		s, ok := stringify(v)
		if !ok {
			delete(merged, k)
			continue
		}
		merged[k] = s
	}

	q := url.Values{}
	for k, v := range merged {
		if v != "" {
			q.Set(k, v)
		}
	}

	key := Fingerprint(authHeader) + ":" + rawPath
	if canonical := q.Encode(); canonical != "" {
		key += "?" + canonical
	}
	return key
}

// parseEmbedded splits a raw query into key/value pairs, joining repeated
// keys with commas. Pairs that fail to unescape keep their raw text, so a
// malformed pair still distinguishes one request from another.
func parseEmbedded(raw string) map[string]string {
	merged := map[string]string{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		k = unescape(k)
		v = unescape(v)
		if prev, ok := merged[k]; ok && prev != "" {
			if v == "" {
				continue
			}
			v = prev + "," + v
		}
		merged[k] = v
	}
	return merged
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// stringify renders a parameter value. It reports false for values that
// should be dropped.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil || *t == "" {
			return "", false
		}
		return *t, true
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return strings.Join(t, ","), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := stringify(item); ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(t), true
	}
}
