package paging

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// PageQuery describes a single page fetch handed to the Fetcher.
type PageQuery struct {
	Resource string
	Version  string
	Filter   Filter

	// Offset is sent only when >= 0.
	Offset int

	// Limit is sent only when > 0.
	Limit int
}

type pageParams struct {
	Offset *int `url:"offset,omitempty"`
	Limit  *int `url:"limit,omitempty"`
}

// Values builds the query parameters for q: offset and limit followed by
// any URL-borne filter.
func (q PageQuery) Values() (url.Values, error) {
	var p pageParams
	if q.Offset >= 0 {
		offset := q.Offset
		p.Offset = &offset
	}
	if q.Limit > 0 {
		limit := q.Limit
		p.Limit = &limit
	}

	values, err := query.Values(p)
	if err != nil {
		return nil, fmt.Errorf("encode paging params: %w", err)
	}
	if err := q.Filter.apply(values); err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return values, nil
}

// Params returns Values flattened to a single-valued map.
func (q PageQuery) Params() (map[string]string, error) {
	values, err := q.Values()
	if err != nil {
		return nil, err
	}
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params, nil
}
