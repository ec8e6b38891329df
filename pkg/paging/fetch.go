package paging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// budget bounds a fetch range. Negative fields are unbounded.
type budget struct {
	pages int
	rows  int
}

var unbounded = budget{pages: unset, rows: unset}

// strategyBudgets holds one budget function per strategy. Offsets need no
// entry here: a resolved plan already carries offset 0 for the strategies
// that start at the beginning.
var strategyBudgets = map[Strategy]func(p *Plan) budget{
	StrategyAll: func(*Plan) budget {
		return unbounded
	},
	StrategyCountPages: func(p *Plan) budget {
		return pagesBudget(p.PageCount)
	},
	StrategyFromOffset: func(*Plan) budget {
		return unbounded
	},
	StrategyFromOffsetCountPages: func(p *Plan) budget {
		return pagesBudget(p.PageCount)
	},
	StrategyRowLimit: func(p *Plan) budget {
		return rowsBudget(p.RowCount)
	},
	StrategyFromOffsetRowLimit: func(p *Plan) budget {
		return rowsBudget(p.RowCount)
	},
}

// pagesBudget limits a run to n pages; n <= 0 degrades to unbounded.
func pagesBudget(n int) budget {
	if n <= 0 {
		return unbounded
	}
	return budget{pages: n, rows: unset}
}

// rowsBudget limits a run to n rows; n <= 0 degrades to unbounded.
func rowsBudget(n int) budget {
	if n <= 0 {
		return unbounded
	}
	return budget{pages: unset, rows: n}
}

// FetchLoop issues the sequential page fetches of a plan.
type FetchLoop struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewFetchLoop creates a fetch loop backed by fetcher.
func NewFetchLoop(fetcher Fetcher, logger zerolog.Logger) *FetchLoop {
	return &FetchLoop{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Fetch returns the pages the plan still needs, in offset order. The
// discovery page is not part of the result; when it starts at the plan's
// offset it counts as the first page and the loop resumes after it.
func (l *FetchLoop) Fetch(ctx context.Context, plan *Plan) ([]*Response, error) {
	if !plan.NeedsFetchLoop || plan.TotalCount == 0 {
		return nil, nil
	}
	if plan.Offset >= plan.TotalCount {
		// Nothing lies past the total; at most the discovery page is used.
		return nil, nil
	}

	budgetFor, ok := strategyBudgets[plan.Strategy]
	if !ok {
		return nil, fmt.Errorf("unknown paging strategy %q", plan.Strategy)
	}
	b := budgetFor(plan)

	start := plan.Offset
	if plan.reusesDiscovery() {
		if plan.TotalCount-plan.Offset <= plan.PageSize {
			return nil, nil
		}
		if b.pages > 0 {
			b.pages--
		}
		if b.rows > 0 {
			b.rows -= plan.pageLimit(plan.Offset)
			if b.rows < 0 {
				b.rows = 0
			}
		}
		start += plan.PageSize
	}

	return l.fetchRange(ctx, plan, start, b)
}

// fetchRange fetches pages at start, start+PageSize, ... until the offset
// reaches TotalCount or the budget is spent. The last page's limit is
// clamped to the rows remaining before TotalCount.
func (l *FetchLoop) fetchRange(ctx context.Context, plan *Plan, start int, b budget) ([]*Response, error) {
	var pages []*Response
	rows := 0

	for offset := start; offset < plan.TotalCount; offset += plan.PageSize {
		if b.pages >= 0 && len(pages) >= b.pages {
			break
		}
		if b.rows >= 0 && rows >= b.rows {
			break
		}

		limit := plan.pageLimit(offset)
		q := PageQuery{
			Resource: plan.Resource,
			Version:  plan.Version,
			Filter:   plan.Filter,
			Offset:   offset,
			Limit:    limit,
		}

		l.logger.Debug().
			Str("resource", plan.Resource).
			Str("strategy", string(plan.Strategy)).
			Int("offset", offset).
			Int("limit", limit).
			Msg("Fetching page")

		resp, err := l.fetcher.FetchPage(ctx, q)
		if err != nil {
			l.logger.Error().
				Err(err).
				Str("resource", plan.Resource).
				Int("offset", offset).
				Int("pages_fetched", len(pages)).
				Msg("Page fetch failed")
			return nil, fmt.Errorf("fetch %s at offset %d: %w", plan.Resource, offset, err)
		}
		PagesFetched.WithLabelValues(string(plan.Strategy)).Inc()

		pages = append(pages, resp)
		rows += limit

		if limit < plan.PageSize {
			break
		}
	}

	return pages, nil
}
