package paging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var errBoom = errors.New("connection reset")

// fakeServer serves a resource of total rows {"id":i,"name":"item-i"}.
type fakeServer struct {
	total       int
	maxPageSize int // caps every page; 0 omits the header and caps at DefaultMaxPageSize
	omitTotal   bool
	failAt      int // offset that fails, -1 for none

	mu      sync.Mutex
	queries []PageQuery
	urls    []string
}

func newFakeServer(total, maxPageSize int) *fakeServer {
	return &fakeServer{total: total, maxPageSize: maxPageSize, failAt: -1}
}

func (s *fakeServer) FetchPage(_ context.Context, q PageQuery) (*Response, error) {
	values, err := q.Values()
	if err != nil {
		return nil, err
	}
	u := "https://ethos.test/api/" + q.Resource + "?" + values.Encode()

	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.urls = append(s.urls, u)
	s.mu.Unlock()

	if s.failAt >= 0 && q.Offset == s.failAt {
		return nil, errBoom
	}

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	maxSize := s.maxPageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	limit := q.Limit
	if limit <= 0 || limit > maxSize {
		limit = maxSize
	}

	headers := map[string]string{}
	if !s.omitTotal {
		headers[HeaderTotalCount] = strconv.Itoa(s.total)
	}
	if s.maxPageSize > 0 {
		headers[HeaderMaxPageSize] = strconv.Itoa(s.maxPageSize)
	}

	return &Response{
		Headers:      headers,
		Content:      rowsBody(offset, min(offset+limit, s.total)),
		StatusCode:   200,
		RequestedURL: u,
	}, nil
}

func (s *fakeServer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *fakeServer) lastQuery() PageQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func (s *fakeServer) requestedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.urls...)
}

// rowsBody renders rows [from, to) as a JSON array.
func rowsBody(from, to int) string {
	rows := []string{}
	for i := from; i < to; i++ {
		rows = append(rows, row(i))
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func row(i int) string {
	return fmt.Sprintf(`{"id":%d,"name":"item-%d"}`, i, i)
}

func rowRange(from, to int) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, row(i))
	}
	return out
}

func zeroLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestPipeline(f Fetcher) *Pipeline {
	return NewPipeline(f, zeroLogger())
}
