// Package client provides the Ethos integration HTTP client: bearer token
// handling, the page transport used by the paging engine, and the public
// single-page and paged read operations.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/Sternrassler/ethos-paging/pkg/cache"
	"github.com/Sternrassler/ethos-paging/pkg/logging"
	"github.com/Sternrassler/ethos-paging/pkg/paging"
)

// Prometheus metrics for Ethos client operations.
var (
	ethosRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethos_requests_total",
		Help: "Total Ethos requests by method and status",
	}, []string{"method", "status"})

	ethosRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ethos_request_duration_seconds",
		Help:    "Ethos request duration in seconds by method",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	ethosErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethos_errors_total",
		Help: "Total Ethos errors by class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the Ellucian Ethos integration host.
	DefaultBaseURL = "https://integrate.elluciancloud.com"

	// DefaultUserAgent identifies this client when none is configured.
	DefaultUserAgent = "ethos-paging/1.0"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Ethos integration API, without a trailing /api
	BaseURL string `validate:"required,url"`

	// APIKey of the Ethos application, exchanged for bearer tokens
	APIKey string `validate:"required"`

	// UserAgent header sent with every request
	UserAgent string `validate:"required"`

	// Timeout bounds every single HTTP call
	Timeout time.Duration `validate:"gt=0"`

	// TokenTTL is how long an issued bearer token is accepted
	TokenTTL time.Duration `validate:"gte=1m"`

	// Redis optionally shares bearer tokens between processes
	Redis *redis.Client `validate:"-"`
}

// DefaultConfig returns a default configuration for apiKey.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		APIKey:    apiKey,
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
		TokenTTL:  5 * time.Minute,
	}
}

// Client is the Ethos client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	tokens      *tokenSource
	pipeline    *paging.Pipeline
	coordinator *paging.Coordinator
	config      Config
	logger      zerolog.Logger

	closeOnce sync.Once
}

// New creates a new Ethos client.
func New(cfg Config) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := logging.NewLogger(logging.ComponentClient)

	authClient := &http.Client{Timeout: cfg.Timeout}
	var source oauth2.TokenSource = &authSource{
		ctx:       context.Background(),
		http:      authClient,
		url:       cfg.BaseURL + "/auth",
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		ttl:       cfg.TokenTTL,
		logger:    logger,
	}

	var tokenCache *cache.Manager
	key := cache.TokenKey{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey}
	if cfg.Redis != nil {
		tokenCache = cache.NewManager(cfg.Redis)
		source = &cachedSource{
			ctx:    context.Background(),
			cache:  tokenCache,
			key:    key,
			src:    source,
			logger: logging.NewLogger(logging.ComponentTokenCache),
		}
	}
	tokens := newTokenSource(source, tokenCache, key)

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   http.DefaultTransport,
			},
		},
		tokens: tokens,
		config: cfg,
		logger: logger,
	}

	pagingLogger := logging.NewLogger(logging.ComponentPaging)
	c.pipeline = paging.NewPipeline(c, pagingLogger)
	c.coordinator = paging.NewCoordinator(c.pipeline, pagingLogger)

	return c, nil
}

// Get fetches a single page of resource without paging parameters.
func (c *Client) Get(ctx context.Context, resource, version string) (*paging.Response, error) {
	if resource == "" {
		return nil, fmt.Errorf("%w: resource name is required", paging.ErrInvalidArgument)
	}
	return c.FetchPage(ctx, paging.PageQuery{
		Resource: resource,
		Version:  versionOrDefault(version),
		Offset:   -1,
	})
}

// GetByID fetches one item of resource by its id.
func (c *Client) GetByID(ctx context.Context, resource, id, version string) (*paging.Response, error) {
	if resource == "" {
		return nil, fmt.Errorf("%w: resource name is required", paging.ErrInvalidArgument)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", paging.ErrInvalidArgument)
	}
	return c.FetchPage(ctx, paging.PageQuery{
		Resource: resource + "/" + id,
		Version:  versionOrDefault(version),
		Offset:   -1,
	})
}

// GetWithFilter fetches a single page of resource restricted by filter.
func (c *Client) GetWithFilter(ctx context.Context, resource, version string, filter paging.Filter) (*paging.Response, error) {
	if resource == "" {
		return nil, fmt.Errorf("%w: resource name is required", paging.ErrInvalidArgument)
	}
	if filter.IsZero() {
		return nil, fmt.Errorf("%w: filter is required", paging.ErrInvalidArgument)
	}
	return c.FetchPage(ctx, paging.PageQuery{
		Resource: resource,
		Version:  versionOrDefault(version),
		Filter:   filter,
		Offset:   -1,
	})
}

// TotalCount returns the number of items matching filter, read from the
// total count header of a one-row fetch. A missing or unparsable header
// counts as 0.
func (c *Client) TotalCount(ctx context.Context, resource, version string, filter paging.Filter) (int, error) {
	if resource == "" {
		return 0, fmt.Errorf("%w: resource name is required", paging.ErrInvalidArgument)
	}
	resp, err := c.FetchPage(ctx, paging.PageQuery{
		Resource: resource,
		Version:  versionOrDefault(version),
		Filter:   filter,
		Offset:   0,
		Limit:    1,
	})
	if err != nil {
		return 0, err
	}

	raw, ok := resp.Header(paging.HeaderTotalCount)
	if !ok {
		return 0, nil
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		c.logger.Warn().
			Str("resource", resource).
			Str("value", raw).
			Msg("Unparsable total count header, assuming 0")
		return 0, nil
	}
	return total, nil
}

// Close waits for in-flight async runs and releases idle connections.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.coordinator.Wait()
		c.httpClient.CloseIdleConnections()
	})
	return nil
}

func versionOrDefault(version string) string {
	if version == "" {
		return paging.DefaultVersion
	}
	return version
}
