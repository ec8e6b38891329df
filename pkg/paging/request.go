package paging

// DefaultVersion is the media type used when a request names no version.
const DefaultVersion = "application/json"

// unset marks an optional integer the caller did not supply.
const unset = -1

// Request is the caller's description of a paging run. Build it with
// NewRequest; it is not modified afterwards.
type Request struct {
	resource string
	version  string
	filter   Filter

	pageSize  int
	offset    int
	pageCount int
	rowCount  int

	initial *Response
}

// Option configures a Request.
type Option func(*Request)

// NewRequest builds a Request for resource. Optional parameters left unset
// (or set negative) mean "not specified".
func NewRequest(resource string, opts ...Option) Request {
	r := Request{
		resource:  resource,
		pageSize:  unset,
		offset:    unset,
		pageCount: unset,
		rowCount:  unset,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WithVersion sets the media-type version.
func WithVersion(version string) Option {
	return func(r *Request) { r.version = version }
}

// WithFilter attaches a filter payload.
func WithFilter(f Filter) Option {
	return func(r *Request) { r.filter = f }
}

// WithPageSize requests a page size. Values <= 0 defer to the server maximum.
func WithPageSize(n int) Option {
	return func(r *Request) { r.pageSize = n }
}

// WithOffset starts paging at offset n.
func WithOffset(n int) Option {
	return func(r *Request) { r.offset = n }
}

// WithPageCount limits the run to n pages.
func WithPageCount(n int) Option {
	return func(r *Request) { r.pageCount = n }
}

// WithRowCount limits the run to n rows.
func WithRowCount(n int) Option {
	return func(r *Request) { r.rowCount = n }
}

// WithInitialResponse supplies an already fetched first page, which then
// replaces the discovery fetch.
func WithInitialResponse(resp *Response) Option {
	return func(r *Request) { r.initial = resp }
}

// Resource returns the resource name.
func (r Request) Resource() string { return r.resource }

// Version returns the requested version, or DefaultVersion.
func (r Request) Version() string {
	if r.version == "" {
		return DefaultVersion
	}
	return r.version
}

// Filter returns the filter payload.
func (r Request) Filter() Filter { return r.filter }

// PageSize returns the requested page size and whether it is usable (> 0).
func (r Request) PageSize() (int, bool) { return r.pageSize, r.pageSize > 0 }

// Offset returns the requested offset and whether it was supplied (>= 0).
func (r Request) Offset() (int, bool) { return r.offset, r.offset >= 0 }

// PageCount returns the page limit and whether it was supplied (>= 0).
func (r Request) PageCount() (int, bool) { return r.pageCount, r.pageCount >= 0 }

// RowCount returns the row limit and whether it was supplied (>= 0).
func (r Request) RowCount() (int, bool) { return r.rowCount, r.rowCount >= 0 }

// InitialResponse returns the caller supplied first page, if any.
func (r Request) InitialResponse() *Response { return r.initial }
