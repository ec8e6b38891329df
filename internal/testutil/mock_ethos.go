// Package testutil provides testing utilities for the Ethos paging client.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// MockResource is one paged collection served by MockEthos.
type MockResource struct {
	// Rows are the JSON objects of the collection, in order.
	Rows []string

	// MaxPageSize is reported in x-max-page-size and caps unlimited
	// requests. 0 omits the header and caps at DefaultLimit.
	MaxPageSize int

	// OmitTotalCount drops the x-total-count header.
	OmitTotalCount bool
}

// DefaultLimit caps requests without a limit when no max page size is set.
const DefaultLimit = 500

// MockEthos is a configurable mock Ethos integration server for testing.
//
//	POST /auth                 -> raw bearer token, requires "Bearer <APIKey>"
//	GET  /api/{resource}       -> paged rows with x-total-count
//	GET  /api/{resource}/{id}  -> the row whose "id" matches
//	POST /qapi/{resource}      -> paged rows, request body recorded
type MockEthos struct {
	server *httptest.Server
	apiKey string

	mu        sync.RWMutex
	resources map[string]MockResource
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	failures  map[int]int // offset -> status code
	tokens    map[string]bool

	// Tracking
	AuthCount         int
	RequestCount      int
	RequestedURIs     []string
	QueryBodies       []string
	LastRequestHeader http.Header
}

// NewMockEthos creates a mock server accepting apiKey at the auth endpoint.
func NewMockEthos(apiKey string) *MockEthos {
	mock := &MockEthos{
		apiKey:    apiKey,
		resources: make(map[string]MockResource),
		handlers:  make(map[string]func(w http.ResponseWriter, r *http.Request)),
		failures:  make(map[int]int),
		tokens:    make(map[string]bool),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.serve))

	return mock
}

// URL returns the mock server URL.
func (m *MockEthos) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockEthos) Close() {
	m.server.Close()
}

// Reset clears all tracking counters. Issued tokens stay valid.
func (m *MockEthos) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthCount = 0
	m.RequestCount = 0
	m.RequestedURIs = nil
	m.QueryBodies = nil
	m.LastRequestHeader = nil
}

// SetResource registers a collection under name.
func (m *MockEthos) SetResource(name string, res MockResource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources[name] = res
}

// SetHandler overrides the handler for an exact path.
func (m *MockEthos) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// FailAtOffset makes every page request at offset answer with status.
func (m *MockEthos) FailAtOffset(offset, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[offset] = status
}

// RevokeTokens invalidates every token issued so far.
func (m *MockEthos) RevokeTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = make(map[string]bool)
}

// GetAuthCount returns the number of auth calls.
func (m *MockEthos) GetAuthCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AuthCount
}

// GetRequestCount returns the number of data requests, auth excluded.
func (m *MockEthos) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestedURIs returns the request URIs of all data requests in order.
func (m *MockEthos) GetRequestedURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.RequestedURIs...)
}

// GetQueryBodies returns the bodies POSTed to the query API.
func (m *MockEthos) GetQueryBodies() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.QueryBodies...)
}

// GetLastRequestHeader returns the headers of the latest data request.
func (m *MockEthos) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

func (m *MockEthos) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth" {
		m.handleAuth(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.RequestCount++
	m.RequestedURIs = append(m.RequestedURIs, r.URL.RequestURI())
	m.LastRequestHeader = r.Header.Clone()
	if strings.HasPrefix(r.URL.Path, "/qapi/") {
		m.QueryBodies = append(m.QueryBodies, string(body))
	}
	authorized := m.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	handler, custom := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if !authorized {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	if custom {
		handler(w, r)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/") && r.Method == http.MethodGet:
		m.handleResource(w, r, strings.TrimPrefix(r.URL.Path, "/api/"))
	case strings.HasPrefix(r.URL.Path, "/qapi/") && r.Method == http.MethodPost:
		m.handleResource(w, r, strings.TrimPrefix(r.URL.Path, "/qapi/"))
	default:
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}
}

func (m *MockEthos) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.Header.Get("Authorization") != "Bearer "+m.apiKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	m.AuthCount++
	token := fmt.Sprintf("mock-token-%d", m.AuthCount)
	m.tokens[token] = true
	m.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(token))
}

func (m *MockEthos) handleResource(w http.ResponseWriter, r *http.Request, path string) {
	name, id, byID := strings.Cut(path, "/")

	m.mu.RLock()
	res, ok := m.resources[name]
	m.mu.RUnlock()
	if !ok {
		http.Error(w, `{"message":"unknown resource"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if byID {
		needle := fmt.Sprintf(`"id":%q`, id)
		for _, row := range res.Rows {
			if strings.Contains(row, needle) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(row))
				return
			}
		}
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	m.mu.RLock()
	status, fail := m.failures[offset]
	m.mu.RUnlock()
	if fail {
		http.Error(w, `{"message":"injected failure"}`, status)
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	maxSize := res.MaxPageSize
	if maxSize <= 0 {
		maxSize = DefaultLimit
	}
	if limit <= 0 || limit > maxSize {
		limit = maxSize
	}

	total := len(res.Rows)
	from := min(offset, total)
	to := min(offset+limit, total)

	if !res.OmitTotalCount {
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
	}
	if res.MaxPageSize > 0 {
		w.Header().Set("X-Max-Page-Size", strconv.Itoa(res.MaxPageSize))
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("[" + strings.Join(res.Rows[from:to], ",") + "]"))
}

// NumberedRows builds n rows {"id":"<i>","name":"row-<i>"} for i in [0, n).
func NumberedRows(n int) []string {
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, NumberedRow(i))
	}
	return rows
}

// NumberedRow renders row i as built by NumberedRows.
func NumberedRow(i int) string {
	return fmt.Sprintf(`{"id":"%d","name":"row-%d"}`, i, i)
}
