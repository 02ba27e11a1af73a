package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/scrapingbee-cli/pkg/usage"
)

// PlanRequest carries the caller's batch flags.
type PlanRequest struct {
	// SingleInput is the positional input, which must be empty in batch mode.
	SingleInput string
	InputFile   string

	// RequestedConcurrency is the --concurrency flag. 0 means the plan limit.
	RequestedConcurrency int

	// OutputDir is the --batch-output-dir flag. Empty means batch_<timestamp>.
	OutputDir string
}

// Plan is an accepted batch, immutable for the duration of the run.
type Plan struct {
	Concurrency int
	OutputDir   string
	Items       []Item
}

// Planner validates batch preconditions and derives a Plan.
type Planner struct {
	now func() time.Time
}

// NewPlanner creates a planner that names default output directories after
// the current local time.
func NewPlanner() *Planner {
	return &Planner{now: time.Now}
}

// CheckInputs rejects a positional input combined with an input file.
func (p *Planner) CheckInputs(req PlanRequest) error {
	if req.SingleInput != "" && req.InputFile != "" {
		return &ConfigError{Err: ErrConflictingInputs}
	}
	return nil
}

// Plan accepts or rejects a batch. Checks run in a fixed order: conflicting
// inputs, concurrency over the plan limit, insufficient credit. The output
// directory is created only for an accepted batch.
func (p *Planner) Plan(req PlanRequest, items []Item, snap usage.Snapshot) (Plan, error) {
	if err := p.CheckInputs(req); err != nil {
		return Plan{}, err
	}
	if len(items) == 0 {
		return Plan{}, &ConfigError{Err: ErrNoInput}
	}

	if req.RequestedConcurrency > 0 && req.RequestedConcurrency > snap.MaxConcurrency {
		return Plan{}, &ConfigError{
			Err: fmt.Errorf("%w: concurrency %d exceeds your plan limit of %d",
				ErrConcurrencyOverLimit, req.RequestedConcurrency, snap.MaxConcurrency),
			Hint: usageHint,
		}
	}

	if !snap.HasCreditFor(len(items)) {
		return Plan{}, &ConfigError{
			Err: fmt.Errorf("%w: %d requested, %d available",
				ErrInsufficientCredit, len(items), *snap.CreditBalance),
			Hint: usageHint,
		}
	}

	concurrency := snap.MaxConcurrency
	if req.RequestedConcurrency > 0 {
		concurrency = req.RequestedConcurrency
	}

	dir, err := p.prepareOutputDir(req.OutputDir)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Concurrency: concurrency,
		OutputDir:   dir,
		Items:       items,
	}, nil
}

// DefaultOutputDir returns batch_<YYYYMMDD_HHMMSS> for the given time.
func DefaultOutputDir(t time.Time) string {
	return "batch_" + t.Format("20060102_150405")
}

func (p *Planner) prepareOutputDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultOutputDir(p.now())
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &IOError{Op: "resolve output dir", Path: dir, Err: err}
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", &IOError{Op: "create output dir", Path: abs, Err: err}
		}
	case err != nil:
		return "", &IOError{Op: "stat output dir", Path: abs, Err: err}
	case !info.IsDir():
		return "", &IOError{Op: "use output dir", Path: abs, Err: errors.New("not a directory")}
	}

	probe, err := os.CreateTemp(abs, ".scrapingbee-write-check-*")
	if err != nil {
		return "", &IOError{Op: "write to output dir", Path: abs, Err: err}
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return "", &IOError{Op: "write to output dir", Path: abs, Err: err}
	}

	return abs, nil
}
