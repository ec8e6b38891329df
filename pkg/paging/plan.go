package paging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultMaxPageSize is used when the server reports no max page size.
const DefaultMaxPageSize = 500

// Plan is a fully resolved paging run.
type Plan struct {
	Resource string
	Version  string
	Filter   Filter

	// PageSize is always > 0.
	PageSize int

	// Offset is always >= 0.
	Offset int

	// TotalCount is the server reported number of matching items.
	TotalCount int

	Strategy Strategy

	// PageCount and RowCount carry the caller's limits, -1 when absent.
	PageCount int
	RowCount  int

	// NeedsFetchLoop is false when the discovery page alone satisfies the run.
	NeedsFetchLoop bool

	// Discovery is the page fetched (or supplied) during resolution.
	Discovery *Response

	// DiscoveryOffset is the offset the discovery page starts at.
	DiscoveryOffset int
}

// reusesDiscovery reports whether the discovery page is the first page of
// the run and must not be fetched again.
func (p *Plan) reusesDiscovery() bool {
	return p.Discovery != nil && p.DiscoveryOffset == p.Offset
}

// pageLimit returns the limit of a page starting at offset, clamped to the
// rows remaining before TotalCount.
func (p *Plan) pageLimit(offset int) int {
	if remaining := p.TotalCount - offset; remaining < p.PageSize {
		return remaining
	}
	return p.PageSize
}

// Resolver turns a Request into a Plan using at most one discovery fetch.
type Resolver struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewResolver creates a resolver backed by fetcher.
func NewResolver(fetcher Fetcher, logger zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve validates req, performs the discovery fetch unless the request
// already carries an initial response, and derives page size, offset,
// total count and strategy.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Plan, error) {
	if req.Resource() == "" {
		return nil, invalidArgument("resource name is required")
	}

	offset := 0
	if o, ok := req.Offset(); ok {
		offset = o
	}
	requestedSize, hasSize := req.PageSize()

	discovery := req.InitialResponse()
	discoveryOffset := offset
	if discovery == nil {
		q := PageQuery{
			Resource: req.Resource(),
			Version:  req.Version(),
			Filter:   req.Filter(),
			Offset:   offset,
		}
		if hasSize {
			q.Limit = requestedSize
		}

		r.logger.Debug().
			Str("resource", q.Resource).
			Int("offset", q.Offset).
			Int("limit", q.Limit).
			Msg("Discovery fetch")

		resp, err := r.fetcher.FetchPage(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("discovery fetch for %s: %w", req.Resource(), err)
		}
		if resp == nil {
			resp = &Response{}
		}
		discovery = resp
	} else {
		discoveryOffset = discovery.requestedOffset()
	}

	totalCount, ok := discovery.intHeader(HeaderTotalCount)
	if !ok || totalCount < 0 {
		if raw, present := discovery.Header(HeaderTotalCount); present {
			r.logger.Warn().
				Str("resource", req.Resource()).
				Str("value", raw).
				Msg("Unparsable total count header, assuming 0")
		}
		totalCount = 0
	}

	var pageSize int
	if hasSize {
		pageSize = r.cappedPageSize(discovery, requestedSize, discoveryOffset, totalCount)
	} else {
		pageSize = r.serverPageSize(discovery)
	}

	pageCount, _ := req.PageCount()
	rowCount, _ := req.RowCount()

	plan := &Plan{
		Resource:        req.Resource(),
		Version:         req.Version(),
		Filter:          req.Filter(),
		PageSize:        pageSize,
		Offset:          offset,
		TotalCount:      totalCount,
		Strategy:        StrategyFor(req),
		PageCount:       pageCount,
		RowCount:        rowCount,
		NeedsFetchLoop:  pageSize < totalCount,
		Discovery:       discovery,
		DiscoveryOffset: discoveryOffset,
	}

	r.logger.Debug().
		Str("resource", plan.Resource).
		Str("strategy", string(plan.Strategy)).
		Int("page_size", plan.PageSize).
		Int("offset", plan.Offset).
		Int("total_count", plan.TotalCount).
		Bool("needs_fetch_loop", plan.NeedsFetchLoop).
		Msg("Paging plan resolved")

	return plan, nil
}

// serverPageSize derives the page size from the discovery page: the max
// page size header (or the default), clamped down to the number of rows the
// server actually returned.
func (r *Resolver) serverPageSize(discovery *Response) int {
	size, ok := discovery.intHeader(HeaderMaxPageSize)
	if !ok || size <= 0 {
		size = DefaultMaxPageSize
	}
	if n, ok := countRows(discovery.Content); ok && n > 0 && n < size {
		size = n
	}
	return size
}

// cappedPageSize bounds a caller page size by what the server serves: the
// max page size header, and the row count of a short discovery page when
// rows remain after it.
func (r *Resolver) cappedPageSize(discovery *Response, requested, discoveryOffset, totalCount int) int {
	size := requested
	if limit, ok := discovery.intHeader(HeaderMaxPageSize); ok && limit > 0 && limit < size {
		size = limit
	}
	if n, ok := countRows(discovery.Content); ok && n > 0 && n < size && discoveryOffset+n < totalCount {
		size = n
	}
	if size != requested {
		r.logger.Debug().
			Int("requested", requested).
			Int("page_size", size).
			Msg("Page size capped by server")
	}
	return size
}

// countRows returns the top-level element count of a JSON array body.
func countRows(content string) (int, bool) {
	if strings.TrimSpace(content) == "" {
		return 0, false
	}
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(content), &rows); err != nil {
		return 0, false
	}
	return len(rows), true
}
