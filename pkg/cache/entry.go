package cache

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenEntry represents a cached bearer token.
type TokenEntry struct {
	// AccessToken is the raw bearer token returned by the auth endpoint
	AccessToken string `json:"access_token"`

	// TokenType is usually "Bearer"
	TokenType string `json:"token_type"`

	// Expires is when the token stops being accepted
	Expires time.Time `json:"expires"`

	// CachedAt is when we cached this token
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true if the token has expired.
func (e *TokenEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *TokenEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// EntryFromToken converts an oauth2 token to a cache entry.
// Returns nil for a nil token.
func EntryFromToken(tok *oauth2.Token) *TokenEntry {
	if tok == nil {
		return nil
	}
	return &TokenEntry{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expires:     tok.Expiry,
		CachedAt:    time.Now(),
	}
}

// Token converts the entry back to an oauth2 token.
func (e *TokenEntry) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: e.AccessToken,
		TokenType:   e.TokenType,
		Expiry:      e.Expires,
	}
}
