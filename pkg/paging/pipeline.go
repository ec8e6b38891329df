package paging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// State is a pipeline run's position in its lifecycle.
type State string

const (
	// StateCreated is a run that has not started.
	StateCreated State = "created"

	// StateResolving covers validation and the discovery fetch.
	StateResolving State = "resolving"

	// StateShortcutDone means the discovery page alone answers the run.
	StateShortcutDone State = "shortcut_done"

	// StateFetching is the sequential page loop.
	StateFetching State = "fetching"

	// StateAssembling converts fetched pages into the requested output.
	StateAssembling State = "assembling"

	// StateComplete is terminal: the output is available.
	StateComplete State = "complete"

	// StateFailed is terminal: the first error ended the run.
	StateFailed State = "failed"
)

// Terminal reports whether s is COMPLETE or FAILED.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Pipeline runs Resolver, FetchLoop and an output conversion in sequence.
type Pipeline struct {
	resolver *Resolver
	loop     *FetchLoop
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline whose fetches all go through fetcher.
func NewPipeline(fetcher Fetcher, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		resolver: NewResolver(fetcher, logger),
		loop:     NewFetchLoop(fetcher, logger),
		logger:   logger,
	}
}

// Execute runs the full pipeline for req and converts the result with
// convert (Pages, RowStrings, ...). Any error aborts the run; pages fetched
// before the failure are discarded.
func Execute[T any](ctx context.Context, p *Pipeline, req Request, convert func(*Plan, []*Response) (T, error)) (T, error) {
	return execute(ctx, p, req, convert, func(State) {})
}

func execute[T any](ctx context.Context, p *Pipeline, req Request, convert func(*Plan, []*Response) (T, error), track func(State)) (T, error) {
	var zero T
	start := time.Now()
	strategy := StrategyFor(req)

	fail := func(err error) (T, error) {
		track(StateFailed)
		RunsTotal.WithLabelValues(string(strategy), "failed").Inc()
		p.logger.Error().
			Err(err).
			Str("resource", req.Resource()).
			Str("strategy", string(strategy)).
			Dur("duration", time.Since(start)).
			Msg("Paging run failed")
		return zero, err
	}

	track(StateResolving)
	plan, err := p.resolver.Resolve(ctx, req)
	if err != nil {
		return fail(err)
	}
	if req.InitialResponse() == nil {
		PagesFetched.WithLabelValues(string(plan.Strategy)).Inc()
	}

	var fetched []*Response
	if plan.NeedsFetchLoop {
		track(StateFetching)
		fetched, err = p.loop.Fetch(ctx, plan)
		if err != nil {
			return fail(err)
		}
	} else {
		track(StateShortcutDone)
	}

	track(StateAssembling)
	out, err := convert(plan, fetched)
	if err != nil {
		return fail(err)
	}

	outcome := "complete"
	if !plan.NeedsFetchLoop {
		outcome = "shortcut"
	}
	track(StateComplete)
	RunsTotal.WithLabelValues(string(plan.Strategy), outcome).Inc()
	RunDuration.WithLabelValues(string(plan.Strategy)).Observe(time.Since(start).Seconds())

	p.logger.Info().
		Str("resource", plan.Resource).
		Str("strategy", string(plan.Strategy)).
		Int("total_count", plan.TotalCount).
		Int("page_size", plan.PageSize).
		Int("pages_fetched", len(fetched)).
		Bool("shortcut", !plan.NeedsFetchLoop).
		Dur("duration", time.Since(start)).
		Msg("Paging run complete")

	return out, nil
}

// Pages runs the pipeline and returns the raw pages.
func (p *Pipeline) Pages(ctx context.Context, req Request) ([]*Response, error) {
	return Execute(ctx, p, req, Pages)
}

// PageStrings runs the pipeline and returns each page's content.
func (p *Pipeline) PageStrings(ctx context.Context, req Request) ([]string, error) {
	return Execute(ctx, p, req, PageStrings)
}

// PageRecords runs the pipeline and returns each page parsed once.
func (p *Pipeline) PageRecords(ctx context.Context, req Request) ([]any, error) {
	return Execute(ctx, p, req, PageRecords)
}

// RowStrings runs the pipeline and returns one JSON string per row.
func (p *Pipeline) RowStrings(ctx context.Context, req Request) ([]string, error) {
	return Execute(ctx, p, req, RowStrings)
}

// RowRecords runs the pipeline and returns one record per row.
func (p *Pipeline) RowRecords(ctx context.Context, req Request) ([]any, error) {
	return Execute(ctx, p, req, RowRecords)
}
