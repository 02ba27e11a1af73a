package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Item is one non-blank line of the input file.
type Item struct {
	// Index is the 1-based position among non-blank lines.
	Index int
	Input string
}

// ReadItems reads one item per line. Lines are trimmed and blank lines are
// skipped before indexing.
func ReadItems(r io.Reader) ([]Item, error) {
	var items []Item

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		items = append(items, Item{Index: len(items) + 1, Input: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ReadItemsFile reads the items of an input file. A file without any
// non-blank line is rejected with ErrNoInput.
func ReadItemsFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open input file", Path: path, Err: err}
	}
	defer f.Close()

	items, err := ReadItems(f)
	if err != nil {
		return nil, &IOError{Op: "read input file", Path: path, Err: err}
	}
	if len(items) == 0 {
		return nil, &ConfigError{Err: fmt.Errorf("%w: input file %q has no non-empty lines", ErrNoInput, path)}
	}
	return items, nil
}
