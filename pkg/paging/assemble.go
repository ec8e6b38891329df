package paging

import (
	"bytes"
	"encoding/json"
	"strings"
)

// The conversions below turn a plan plus the pages returned by FetchLoop
// into output collections. They are pure functions of their inputs.

// Pages returns the run's pages in order. The discovery page comes first
// when it belongs to the run. Under a row limit the final page is replaced
// by a trimmed copy so the pages hold exactly the requested rows.
func Pages(plan *Plan, fetched []*Response) ([]*Response, error) {
	pages, err := orderedPages(plan, fetched)
	if err != nil {
		return nil, err
	}
	if !plan.NeedsFetchLoop || !plan.Strategy.RowLimited() || plan.RowCount <= 0 {
		return pages, nil
	}
	return trimPagesToRows(pages, plan.RowCount)
}

// PageStrings returns each page's raw content.
func PageStrings(plan *Plan, fetched []*Response) ([]string, error) {
	pages, err := Pages(plan, fetched)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Content)
	}
	return out, nil
}

// PageRecords parses each page's content once into a record tree.
func PageRecords(plan *Plan, fetched []*Response) ([]any, error) {
	pages, err := Pages(plan, fetched)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(pages))
	for _, p := range pages {
		record, err := decodeRecord([]byte(p.Content))
		if err != nil {
			return nil, &ParseError{Op: "page record", URL: p.RequestedURL, Err: err}
		}
		out = append(out, record)
	}
	return out, nil
}

// RowStrings flattens the pages into one compact JSON string per row.
func RowStrings(plan *Plan, fetched []*Response) ([]string, error) {
	rows, err := planRows(plan, fetched)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		var buf bytes.Buffer
		if err := json.Compact(&buf, row); err != nil {
			return nil, &ParseError{Op: "row", Err: err}
		}
		out = append(out, buf.String())
	}
	return out, nil
}

// RowRecords flattens the pages into one record per row.
func RowRecords(plan *Plan, fetched []*Response) ([]any, error) {
	rows, err := planRows(plan, fetched)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		record, err := decodeRecord(row)
		if err != nil {
			return nil, &ParseError{Op: "row record", Err: err}
		}
		out = append(out, record)
	}
	return out, nil
}

// orderedPages returns the discovery page (trimmed when it alone satisfies
// the run, prepended when it is the run's first page) followed by fetched.
func orderedPages(plan *Plan, fetched []*Response) ([]*Response, error) {
	if !plan.NeedsFetchLoop {
		if plan.Discovery == nil {
			return []*Response{}, nil
		}
		page, err := trimDiscovery(plan)
		if err != nil {
			return nil, err
		}
		return []*Response{page}, nil
	}

	pages := make([]*Response, 0, len(fetched)+1)
	if plan.reusesDiscovery() {
		pages = append(pages, plan.Discovery)
	}
	return append(pages, fetched...), nil
}

// planRows flattens all pages and cuts the result to the row limit.
func planRows(plan *Plan, fetched []*Response) ([]json.RawMessage, error) {
	pages, err := orderedPages(plan, fetched)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	for _, p := range pages {
		pageRows, err := parseRows(p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, pageRows...)
	}
	if plan.Strategy.RowLimited() && plan.RowCount > 0 && len(rows) > plan.RowCount {
		rows = rows[:plan.RowCount]
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	return rows, nil
}

// trimDiscovery slices the discovery page to what the run asked for:
// starting at the requested offset relative to where the page starts, and
// at most RowCount rows for row-limited strategies. No refetch happens.
func trimDiscovery(plan *Plan) (*Response, error) {
	d := plan.Discovery

	start := 0
	if plan.Strategy.FromOffset() {
		start = plan.Offset - plan.DiscoveryOffset
	}
	if start < 0 {
		start = 0
	}
	rowLimit := plan.Strategy.RowLimited() && plan.RowCount > 0
	if start == 0 && !rowLimit {
		return d, nil
	}

	rows, err := parseRows(d)
	if err != nil {
		return nil, err
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	if rowLimit && start+plan.RowCount < end {
		end = start + plan.RowCount
	}
	if start == 0 && end == len(rows) {
		return d, nil
	}
	return withRows(d, rows[start:end])
}

// trimPagesToRows keeps pages until limit rows are covered, replacing the
// page that crosses the limit with a trimmed copy.
func trimPagesToRows(pages []*Response, limit int) ([]*Response, error) {
	out := make([]*Response, 0, len(pages))
	remaining := limit
	for _, p := range pages {
		if remaining <= 0 {
			break
		}
		rows, err := parseRows(p)
		if err != nil {
			return nil, err
		}
		if len(rows) <= remaining {
			out = append(out, p)
			remaining -= len(rows)
			continue
		}
		trimmed, err := withRows(p, rows[:remaining])
		if err != nil {
			return nil, err
		}
		out = append(out, trimmed)
		remaining = 0
	}
	return out, nil
}

// parseRows splits an array-shaped page body into its elements. An empty
// body has no rows.
func parseRows(p *Response) ([]json.RawMessage, error) {
	if strings.TrimSpace(p.Content) == "" {
		return nil, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(p.Content), &rows); err != nil {
		return nil, &ParseError{Op: "rows", URL: p.RequestedURL, Err: err}
	}
	return rows, nil
}

// withRows returns a new Response whose body is rows serialized as an array.
func withRows(p *Response, rows []json.RawMessage) (*Response, error) {
	if rows == nil {
		rows = []json.RawMessage{}
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return nil, &ParseError{Op: "rows", URL: p.RequestedURL, Err: err}
	}
	return p.withContent(string(body)), nil
}

// decodeRecord parses JSON into a generic record tree, keeping numbers as
// json.Number so large identifiers survive.
func decodeRecord(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
