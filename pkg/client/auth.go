package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/Sternrassler/ethos-paging/pkg/cache"
)

// tokenRefreshMargin is how long before expiry a bearer token is replaced.
const tokenRefreshMargin = 30 * time.Second

// authSource exchanges the API key for a bearer token at the auth endpoint.
type authSource struct {
	ctx       context.Context
	http      *http.Client
	url       string
	apiKey    string
	userAgent string
	ttl       time.Duration
	logger    zerolog.Logger
}

// Token implements oauth2.TokenSource.
func (s *authSource) Token() (*oauth2.Token, error) {
	startTime := time.Now()
	defer func() {
		ethosRequestDuration.WithLabelValues(http.MethodPost).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		ethosRequestsTotal.WithLabelValues(http.MethodPost, "network_error").Inc()
		s.logger.Error().Err(err).Str("url", s.url).Msg("Auth request failed")
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "auth request failed",
			URL:        s.url,
			Err:        err,
		}
	}
	defer resp.Body.Close()

	ethosRequestsTotal.WithLabelValues(http.MethodPost, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read auth response",
			URL:        s.url,
			Err:        err,
		}
	}

	token := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || token == "" {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
		s.logger.Error().
			Int("status", resp.StatusCode).
			Str("url", s.url).
			Msg("Token acquisition rejected")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassAuth,
			Message:    "token acquisition failed: " + resp.Status,
			URL:        s.url,
		}
	}

	s.logger.Debug().
		Dur("ttl", s.ttl).
		Msg("Bearer token acquired")

	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(s.ttl),
	}, nil
}

// cachedSource consults the shared Redis token cache before src. Cache
// failures are logged and fall through to src.
type cachedSource struct {
	ctx    context.Context
	cache  *cache.Manager
	key    cache.TokenKey
	src    oauth2.TokenSource
	logger zerolog.Logger
}

// Token implements oauth2.TokenSource.
func (s *cachedSource) Token() (*oauth2.Token, error) {
	entry, err := s.cache.Get(s.ctx, s.key)
	switch {
	case err == nil && entry.TTL() > tokenRefreshMargin:
		s.logger.Debug().Dur("ttl", entry.TTL()).Msg("Bearer token from cache")
		return entry.Token(), nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn().Err(err).Msg("Token cache get error")
	}

	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(s.ctx, s.key, cache.EntryFromToken(tok)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache bearer token")
	}
	return tok, nil
}

// tokenSource hands out the current bearer token and can drop it after the
// server rejects it.
type tokenSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	reuse oauth2.TokenSource
	cache *cache.Manager
	key   cache.TokenKey
}

func newTokenSource(base oauth2.TokenSource, tokenCache *cache.Manager, key cache.TokenKey) *tokenSource {
	return &tokenSource{
		base:  base,
		reuse: oauth2.ReuseTokenSourceWithExpiry(nil, base, tokenRefreshMargin),
		cache: tokenCache,
		key:   key,
	}
}

// Token implements oauth2.TokenSource.
func (s *tokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	src := s.reuse
	s.mu.Unlock()
	return src.Token()
}

// invalidate forgets the current token so the next request authenticates again.
func (s *tokenSource) invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.reuse = oauth2.ReuseTokenSourceWithExpiry(nil, s.base, tokenRefreshMargin)
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, s.key)
}
