package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Summary describes a materialized batch.
type Summary struct {
	OutputDir string
	Succeeded int
	Failed    int

	// PeakInFlight is the highest number of simultaneous item requests.
	// Set by Runner.
	PeakInFlight int
}

// Materializer writes batch results to the filesystem.
type Materializer struct {
	stdout  io.Writer
	stderr  io.Writer
	verbose bool
	logger  zerolog.Logger
}

// NewMaterializer creates a materializer printing diagnostics to stderr and
// the completion line to stdout.
func NewMaterializer(stdout, stderr io.Writer, verbose bool, logger zerolog.Logger) *Materializer {
	return &Materializer{
		stdout:  stdout,
		stderr:  stderr,
		verbose: verbose,
		logger:  logger,
	}
}

// Write stores each success as <index>.txt and each failure body as
// <index>.err, in index order. Every failure gets one line on stderr. The
// completion line is printed once all files are written, whether or not any
// item succeeded.
func (m *Materializer) Write(dir string, results []Result) (Summary, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Summary{}, &IOError{Op: "resolve output dir", Path: dir, Err: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return Summary{}, &IOError{Op: "create output dir", Path: abs, Err: err}
	}

	ordered := slices.Clone(results)
	slices.SortFunc(ordered, func(a, b Result) int { return a.Index - b.Index })

	summary := Summary{OutputDir: abs}
	for _, r := range ordered {
		if !r.Succeeded() {
			summary.Failed++
			fmt.Fprintf(m.stderr, "Item %d (%s): %v\n", r.Index, quoteInput(r.Input), r.Err)
			if len(r.Body) > 0 {
				if err := writeArtifact(abs, r.Index, ".err", r.Body); err != nil {
					return summary, err
				}
			}
			continue
		}

		summary.Succeeded++
		if m.verbose {
			fmt.Fprintf(m.stderr, "Item %d: HTTP %d\n", r.Index, r.StatusCode)
		}
		if err := writeArtifact(abs, r.Index, ".txt", r.Body); err != nil {
			return summary, err
		}
	}

	m.logger.Info().
		Str("output_dir", abs).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("Batch results written")

	fmt.Fprintf(m.stdout, "Batch complete. Output written to %s\n", abs)
	return summary, nil
}

func writeArtifact(dir string, index int, ext string, data []byte) error {
	path := filepath.Join(dir, strconv.Itoa(index)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// quoteInput quotes s with single quotes, or with double quotes when s
// contains a single quote and no double quote. Backslashes and the chosen
// quote are escaped.
func quoteInput(s string) string {
	quote := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = `"`
	}
	r := strings.NewReplacer(`\`, `\\`, quote, `\`+quote)
	return quote + r.Replace(s) + quote
}
