package batch

import (
	"errors"
	"fmt"
)

// Hint appended to rejections that depend on the account's plan.
const usageHint = "check with: scrapingbee usage"

// Sentinel errors wrapped by ConfigError.
var (
	ErrConflictingInputs    = errors.New("cannot use both --input-file and a positional input")
	ErrConcurrencyOverLimit = errors.New("concurrency exceeds plan limit")
	ErrInsufficientCredit   = errors.New("not enough credits")
	ErrNoInput              = errors.New("no input")
)

// ErrInterrupted is returned when the caller's context ends while items are
// still being dispatched. Nothing is written to the output directory.
var ErrInterrupted = errors.New("batch interrupted")

// ConfigError is a batch rejected before any item request was sent.
type ConfigError struct {
	Err  error
	Hint string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (%s)", e.Err, e.Hint)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IOError is a failure to read input or write output on the local filesystem.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *IOError) Unwrap() error {
	return e.Err
}
