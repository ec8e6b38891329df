package paging

import (
	"context"
	"net/url"
	"strconv"
)

// Header names consumed by the paging engine. Transports store response
// header keys lower-cased; lookups are exact on that form.
const (
	HeaderTotalCount  = "x-total-count"
	HeaderMaxPageSize = "x-max-page-size"
)

// Response is one fetched page as returned by the transport.
// It is read-only once created.
type Response struct {
	// Headers holds the response headers keyed by lower-cased name.
	Headers map[string]string

	// Content is the raw response body, usually a JSON array.
	Content string

	// StatusCode is the HTTP status code.
	StatusCode int

	// RequestedURL is the exact URL that produced this response.
	RequestedURL string
}

// Header returns the named header value. The lookup is exact, missing
// headers report false instead of an error.
func (r *Response) Header(name string) (string, bool) {
	if r == nil || r.Headers == nil {
		return "", false
	}
	v, ok := r.Headers[name]
	return v, ok
}

// intHeader parses the named header as an integer.
func (r *Response) intHeader(name string) (int, bool) {
	raw, ok := r.Header(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// requestedOffset reads the offset query parameter of the requested URL,
// 0 when absent or unparsable.
func (r *Response) requestedOffset() int {
	if r == nil || r.RequestedURL == "" {
		return 0
	}
	u, err := url.Parse(r.RequestedURL)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("offset"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// withContent returns a copy of r carrying a different body.
func (r *Response) withContent(content string) *Response {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	return &Response{
		Headers:      headers,
		Content:      content,
		StatusCode:   r.StatusCode,
		RequestedURL: r.RequestedURL,
	}
}

// Fetcher is the transport collaborator. Implementations issue exactly one
// HTTP call per FetchPage and never retry.
type Fetcher interface {
	FetchPage(ctx context.Context, q PageQuery) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, q PageQuery) (*Response, error)

// FetchPage calls f.
func (f FetcherFunc) FetchPage(ctx context.Context, q PageQuery) (*Response, error) {
	return f(ctx, q)
}
