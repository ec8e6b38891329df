package client

import (
	"context"

	"github.com/Sternrassler/ethos-paging/pkg/paging"
)

// Paged reads. A request without a resource name yields an empty
// collection and no error, unlike the single-page reads.

// GetPages returns every page the request selects.
func (c *Client) GetPages(ctx context.Context, req paging.Request) ([]*paging.Response, error) {
	if req.Resource() == "" {
		return []*paging.Response{}, nil
	}
	return c.pipeline.Pages(ctx, req)
}

// GetPageStrings returns the body of every page the request selects.
func (c *Client) GetPageStrings(ctx context.Context, req paging.Request) ([]string, error) {
	if req.Resource() == "" {
		return []string{}, nil
	}
	return c.pipeline.PageStrings(ctx, req)
}

// GetPageRecords returns every page parsed as one JSON value.
func (c *Client) GetPageRecords(ctx context.Context, req paging.Request) ([]any, error) {
	if req.Resource() == "" {
		return []any{}, nil
	}
	return c.pipeline.PageRecords(ctx, req)
}

// GetRows returns one compact JSON string per row.
func (c *Client) GetRows(ctx context.Context, req paging.Request) ([]string, error) {
	if req.Resource() == "" {
		return []string{}, nil
	}
	return c.pipeline.RowStrings(ctx, req)
}

// GetRowRecords returns one parsed record per row.
func (c *Client) GetRowRecords(ctx context.Context, req paging.Request) ([]any, error) {
	if req.Resource() == "" {
		return []any{}, nil
	}
	return c.pipeline.RowRecords(ctx, req)
}

// SubmitPages is the asynchronous GetPages.
func (c *Client) SubmitPages(ctx context.Context, req paging.Request) *paging.Future[[]*paging.Response] {
	if req.Resource() == "" {
		return paging.Resolved([]*paging.Response{})
	}
	return c.coordinator.SubmitPages(ctx, req)
}

// SubmitPageStrings is the asynchronous GetPageStrings.
func (c *Client) SubmitPageStrings(ctx context.Context, req paging.Request) *paging.Future[[]string] {
	if req.Resource() == "" {
		return paging.Resolved([]string{})
	}
	return c.coordinator.SubmitPageStrings(ctx, req)
}

// SubmitPageRecords is the asynchronous GetPageRecords.
func (c *Client) SubmitPageRecords(ctx context.Context, req paging.Request) *paging.Future[[]any] {
	if req.Resource() == "" {
		return paging.Resolved([]any{})
	}
	return c.coordinator.SubmitPageRecords(ctx, req)
}

// SubmitRows is the asynchronous GetRows.
func (c *Client) SubmitRows(ctx context.Context, req paging.Request) *paging.Future[[]string] {
	if req.Resource() == "" {
		return paging.Resolved([]string{})
	}
	return c.coordinator.SubmitRowStrings(ctx, req)
}

// SubmitRowRecords is the asynchronous GetRowRecords.
func (c *Client) SubmitRowRecords(ctx context.Context, req paging.Request) *paging.Future[[]any] {
	if req.Resource() == "" {
		return paging.Resolved([]any{})
	}
	return c.coordinator.SubmitRowRecords(ctx, req)
}

// InFlight returns the number of asynchronous runs not yet resolved.
func (c *Client) InFlight() int {
	return c.coordinator.InFlight()
}
