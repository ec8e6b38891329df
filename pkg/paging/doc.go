// Package paging orchestrates offset/limit paging over a filterable REST
// resource.
//
// The server reports the number of matching items in the x-total-count
// header and the largest allowed page in x-max-page-size. A run reads both
// from one discovery fetch, then issues the remaining fetches one after the
// other. Pages are never fetched in parallel: the total count is read once
// and assumed stable for the whole run.
//
// Example usage:
//
//	p := paging.NewPipeline(fetcher, logging.NewLogger("paging"))
//	req := paging.NewRequest("student-cohorts",
//		paging.WithOffset(30),
//		paging.WithRowCount(40),
//	)
//	rows, err := p.RowStrings(ctx, req)
//
// A run:
//   - Resolves page size, offset and total count (Resolver)
//   - Picks one of six strategies from the supplied limits (SelectStrategy)
//   - Skips the fetch loop when the discovery page already holds everything
//   - Fetches the remaining pages sequentially (FetchLoop)
//   - Converts pages to pages, page strings, page records, row strings or
//     row records, trimming to the row limit
//   - Fails as a whole on the first transport or parse error, without retry
//
// Coordinator runs the same pipeline on a worker goroutine and returns a
// Future.
package paging
