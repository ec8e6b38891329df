package paging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Future is the handle of a pipeline running on a worker goroutine. It
// resolves exactly once, with either the output or the first failure.
type Future[T any] struct {
	done  chan struct{}
	state atomic.Value // State
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.state.Store(StateCreated)
	return f
}

// Resolved returns a future that is already complete with value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.complete(value, nil)
	return f
}

// Done is closed once the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// State returns the pipeline state of the run behind f.
func (f *Future[T]) State() State {
	return f.state.Load().(State)
}

// Await blocks until the future resolves or ctx ends. Giving up on ctx does
// not stop the run; fetches already in flight complete in the background.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the run is
// still in progress.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

func (f *Future[T]) track(s State) {
	f.state.Store(s)
}

func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	if err != nil {
		f.state.Store(StateFailed)
	} else {
		f.state.Store(StateComplete)
	}
	close(f.done)
}

// Coordinator runs pipelines off the caller's goroutine. Each submission
// gets its own worker; fetches within a run stay sequential.
type Coordinator struct {
	pipeline *Pipeline
	logger   zerolog.Logger
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// NewCoordinator creates a coordinator for pipeline.
func NewCoordinator(pipeline *Pipeline, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Submit starts a run of req converted by convert and returns its future.
// The run is detached from ctx cancellation; ctx values still reach the
// transport.
func Submit[T any](ctx context.Context, c *Coordinator, req Request, convert func(*Plan, []*Response) (T, error)) *Future[T] {
	f := newFuture[T]()
	runCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	c.inFlight.Add(1)
	go c.worker(runCtx, req, func(ctx context.Context) {
		var (
			value T
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("paging run for %s panicked: %v", req.Resource(), r)
			}
			f.complete(value, err)
		}()
		value, err = execute(ctx, c.pipeline, req, convert, f.track)
	})

	return f
}

// worker runs one submission and keeps the in-flight bookkeeping.
func (c *Coordinator) worker(ctx context.Context, req Request, run func(context.Context)) {
	defer c.wg.Done()
	defer c.inFlight.Add(-1)

	c.logger.Debug().
		Str("resource", req.Resource()).
		Int64("in_flight", c.inFlight.Load()).
		Msg("Async paging run started")

	run(ctx)
}

// InFlight returns the number of runs not yet resolved.
func (c *Coordinator) InFlight() int {
	return int(c.inFlight.Load())
}

// Wait blocks until every submitted run has resolved.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// SubmitPages runs the pipeline asynchronously and resolves with the raw pages.
func (c *Coordinator) SubmitPages(ctx context.Context, req Request) *Future[[]*Response] {
	return Submit(ctx, c, req, Pages)
}

// SubmitPageStrings resolves with each page's content.
func (c *Coordinator) SubmitPageStrings(ctx context.Context, req Request) *Future[[]string] {
	return Submit(ctx, c, req, PageStrings)
}

// SubmitPageRecords resolves with each page parsed once.
func (c *Coordinator) SubmitPageRecords(ctx context.Context, req Request) *Future[[]any] {
	return Submit(ctx, c, req, PageRecords)
}

// SubmitRowStrings resolves with one JSON string per row.
func (c *Coordinator) SubmitRowStrings(ctx context.Context, req Request) *Future[[]string] {
	return Submit(ctx, c, req, RowStrings)
}

// SubmitRowRecords resolves with one record per row.
func (c *Coordinator) SubmitRowRecords(ctx context.Context, req Request) *Future[[]any] {
	return Submit(ctx, c, req, RowRecords)
}
