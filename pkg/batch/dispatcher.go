package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
)

// BuildFunc maps one item to its request.
type BuildFunc func(Item) (request.Descriptor, error)

// Dispatcher executes a plan's items on a fixed-size worker pool.
type Dispatcher struct {
	doer   client.Doer
	logger zerolog.Logger

	inFlight     atomic.Int64
	peakInFlight atomic.Int64
}

// NewDispatcher creates a dispatcher sending requests through doer.
func NewDispatcher(doer client.Doer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		doer:   doer,
		logger: logger,
	}
}

// Run executes every item of the plan and returns one Result per item,
// ordered by index. At most plan.Concurrency requests are in flight at any
// time. Failures never stop other items and no item is retried.
func (d *Dispatcher) Run(ctx context.Context, plan Plan, build BuildFunc) []Result {
	start := time.Now()
	defer func() {
		batchDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]Result, len(plan.Items))
	if len(plan.Items) == 0 {
		return results
	}

	workers := min(max(plan.Concurrency, 1), len(plan.Items))

	d.logger.Info().
		Int("items", len(plan.Items)).
		Int("concurrency", workers).
		Msg("Starting batch dispatch")

	itemQueue := make(chan Item, len(plan.Items))
	itemResults := make(chan Result, len(plan.Items))

	for _, item := range plan.Items {
		itemQueue <- item
	}
	close(itemQueue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go d.worker(ctx, build, itemQueue, itemResults, &wg, i)
	}

	go func() {
		wg.Wait()
		close(itemResults)
	}()

	// Single collector; each index slot is written exactly once.
	completed := 0
	for result := range itemResults {
		results[result.Index-1] = result
		completed++
		batchItemsTotal.WithLabelValues(outcomeLabel(result)).Inc()

		if completed%50 == 0 {
			d.logger.Info().
				Int("completed", completed).
				Int("total", len(plan.Items)).
				Float64("progress_pct", float64(completed)/float64(len(plan.Items))*100).
				Msg("Batch progress")
		}
	}

	d.logger.Info().
		Int("items", completed).
		Dur("duration", time.Since(start)).
		Msg("Batch dispatch complete")

	return results
}

// PeakInFlight returns the highest number of simultaneous requests observed
// since the dispatcher was created.
func (d *Dispatcher) PeakInFlight() int {
	return int(d.peakInFlight.Load())
}

func (d *Dispatcher) worker(ctx context.Context, build BuildFunc, itemQueue <-chan Item, results chan<- Result, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for item := range itemQueue {
		results <- d.execute(ctx, build, item)
		processed++
	}

	d.logger.Debug().
		Int("worker_id", workerID).
		Int("items_processed", processed).
		Msg("Worker completed")
}

func (d *Dispatcher) execute(ctx context.Context, build BuildFunc, item Item) Result {
	desc, err := build(item)
	if err != nil {
		d.logger.Warn().Err(err).Int("index", item.Index).Msg("Request build failed")
		return newResult(item, nil, err)
	}

	d.enter()
	resp, err := d.doer.Do(ctx, desc)
	d.leave()

	result := newResult(item, resp, err)
	if !result.Succeeded() {
		d.logger.Debug().
			Err(result.Err).
			Int("index", item.Index).
			Int("status_code", result.StatusCode).
			Msg("Item failed")
	}
	return result
}

func (d *Dispatcher) enter() {
	batchInflight.Inc()
	n := d.inFlight.Add(1)
	for {
		peak := d.peakInFlight.Load()
		if n <= peak || d.peakInFlight.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (d *Dispatcher) leave() {
	d.inFlight.Add(-1)
	batchInflight.Dec()
}
