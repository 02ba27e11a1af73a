package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
	"github.com/Sternrassler/scrapingbee-cli/pkg/usage"
)

// UsageFetcher returns the caller's current plan limits.
type UsageFetcher interface {
	Fetch(ctx context.Context) (usage.Snapshot, error)
}

// RunnerConfig holds the collaborators of a Runner.
type RunnerConfig struct {
	Prober  UsageFetcher
	Doer    client.Doer
	Planner *Planner
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Logger  zerolog.Logger
}

// RunRequest is one batch invocation.
type RunRequest struct {
	PlanRequest
	Options request.Options
}

// Runner drives a batch from input file to output directory.
type Runner struct {
	prober  UsageFetcher
	doer    client.Doer
	planner *Planner
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	logger  zerolog.Logger
}

// NewRunner creates a new batch runner.
func NewRunner(cfg RunnerConfig) *Runner {
	planner := cfg.Planner
	if planner == nil {
		planner = NewPlanner()
	}
	return &Runner{
		prober:  cfg.Prober,
		doer:    cfg.Doer,
		planner: planner,
		stdout:  cfg.Stdout,
		stderr:  cfg.Stderr,
		verbose: cfg.Verbose,
		logger:  cfg.Logger,
	}
}

// Run executes a batch. Every error returned before dispatch means no item
// request was sent. Item failures are reported in the output directory and
// do not make Run fail. If ctx ends during dispatch, Run returns
// ErrInterrupted without writing any result or the completion line.
func (r *Runner) Run(ctx context.Context, req RunRequest) (Summary, error) {
	logger := r.logger.With().Str("run_id", ulid.Make().String()).Logger()

	if err := request.Validate(req.Options); err != nil {
		return Summary{}, err
	}
	if err := r.planner.CheckInputs(req.PlanRequest); err != nil {
		return Summary{}, err
	}
	if req.InputFile == "" {
		return Summary{}, &ConfigError{Err: fmt.Errorf("%w: batch mode requires --input-file", ErrNoInput)}
	}

	var (
		items []Item
		snap  usage.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = ReadItemsFile(req.InputFile)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = r.prober.Fetch(gctx)
		if err != nil {
			return fmt.Errorf("usage probe: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("Batch pre-flight failed")
		return Summary{}, err
	}

	plan, err := r.planner.Plan(req.PlanRequest, items, snap)
	if err != nil {
		logger.Warn().Err(err).Msg("Batch rejected")
		return Summary{}, err
	}

	logger.Info().
		Int("items", len(plan.Items)).
		Int("concurrency", plan.Concurrency).
		Str("output_dir", plan.OutputDir).
		Msg("Batch accepted")

	// Items run to completion under a context that ignores cancellation. An
	// interrupt abandons the whole run instead of failing the pending items.
	dispatcher := NewDispatcher(r.doer, logger)
	done := make(chan []Result, 1)
	go func() {
		done <- dispatcher.Run(context.WithoutCancel(ctx), plan, func(item Item) (request.Descriptor, error) {
			return request.Build(req.Options, item.Input)
		})
	}()

	var results []Result
	select {
	case results = <-done:
	case <-ctx.Done():
	}
	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("Batch interrupted, discarding results")
		return Summary{}, fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	summary, err := NewMaterializer(r.stdout, r.stderr, r.verbose, logger).Write(plan.OutputDir, results)
	summary.PeakInFlight = dispatcher.PeakInFlight()
	return summary, err
}
