package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// TokenKey identifies the bearer token of one API key on one Ethos tenant.
type TokenKey struct {
	// BaseURL is the Ethos integration base URL (e.g., "https://integrate.elluciancloud.com")
	BaseURL string

	// APIKey is the application API key. Only its fingerprint is part of the key.
	APIKey string
}

// String generates a deterministic cache key string.
// Format: ethos:token:host:fingerprint
//
// Example:
//
//	ethos:token:integrate.elluciancloud.com:9f86d081884c7d65
func (k TokenKey) String() string {
	parts := []string{"ethos", "token"}

	if host := normalizeHost(k.BaseURL); host != "" {
		parts = append(parts, host)
	}

	parts = append(parts, fingerprint(k.APIKey))

	return strings.Join(parts, ":")
}

// normalizeHost reduces a base URL to its lower-cased host and path so that
// trailing slashes and scheme case do not split the cache.
func normalizeHost(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.Trim(baseURL, "/"))
	}
	return strings.ToLower(u.Host) + strings.TrimRight(u.Path, "/")
}

// fingerprint returns the first 16 hex characters of the key's SHA-256.
func fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])[:16]
}
