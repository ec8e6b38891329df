package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sternrassler/ethos-paging/pkg/paging"
)

// FetchPage implements paging.Fetcher. It issues exactly one HTTP call:
// GET {BaseURL}/api/{resource} or, for query API filters,
// POST {BaseURL}/qapi/{resource} with the filter as body. Non-2xx answers
// become *APIError; nothing is retried.
func (c *Client) FetchPage(ctx context.Context, q paging.PageQuery) (*paging.Response, error) {
	values, err := q.Values()
	if err != nil {
		return nil, err
	}

	method := http.MethodGet
	prefix := "/api/"
	var body io.Reader
	if q.Filter.Kind == paging.FilterQueryAPI && !q.Filter.IsZero() {
		method = http.MethodPost
		prefix = "/qapi/"
		body = strings.NewReader(q.Filter.Encoded)
	}

	rawURL := c.config.BaseURL + prefix + strings.TrimLeft(q.Resource, "/")
	if encoded := values.Encode(); encoded != "" {
		rawURL += "?" + encoded
	}

	return c.do(ctx, method, rawURL, versionOrDefault(q.Version), body)
}

// do executes one request and converts the answer into a paging.Response.
func (c *Client) do(ctx context.Context, method, rawURL, version string, body io.Reader) (*paging.Response, error) {
	startTime := time.Now()
	defer func() {
		ethosRequestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", version)
	if body != nil {
		req.Header.Set("Content-Type", version)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-Id", requestID)

	c.logger.Debug().
		Str("method", method).
		Str("url", rawURL).
		Str("request_id", requestID).
		Msg("Executing Ethos request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(method, rawURL, err)
	}
	defer resp.Body.Close()

	ethosRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			URL:        rawURL,
			Err:        err,
		}
	}

	if class := classifyStatus(resp.StatusCode); class != "" {
		ethosErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Str("request_id", requestID).
			Msg("Ethos request error")

		if class == ErrorClassAuth {
			if err := c.tokens.invalidate(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to drop cached bearer token")
			}
		}

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
			URL:        rawURL,
		}
	}

	return &paging.Response{
		Headers:      lowerHeaders(resp.Header),
		Content:      string(data),
		StatusCode:   resp.StatusCode,
		RequestedURL: rawURL,
	}, nil
}

// transportError turns an http.Client error into an *APIError. Token
// acquisition errors surface through the oauth2 transport and keep their
// own class.
func (c *Client) transportError(method, rawURL string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	ethosErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	ethosRequestsTotal.WithLabelValues(method, "network_error").Inc()

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	c.logger.Error().Err(err).Str("url", rawURL).Msg("HTTP request failed")

	return &APIError{
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		URL:        rawURL,
		Err:        err,
	}
}

// lowerHeaders flattens h with lower-cased keys. Repeated headers are
// joined with ", ".
func lowerHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}
