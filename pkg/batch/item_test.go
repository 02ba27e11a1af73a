package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadItems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Item
	}{
		{
			name:  "blank lines skipped before indexing",
			input: "https://a.example\nhttps://b.example\n\nhttps://c.example\n",
			expected: []Item{
				{Index: 1, Input: "https://a.example"},
				{Index: 2, Input: "https://b.example"},
				{Index: 3, Input: "https://c.example"},
			},
		},
		{
			name:  "whitespace trimmed",
			input: "  one  \r\n\t\n two\t",
			expected: []Item{
				{Index: 1, Input: "one"},
				{Index: 2, Input: "two"},
			},
		},
		{
			name:     "only blank lines",
			input:    "\n   \n\t\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ReadItems(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
		})
	}
}

func TestReadItemsFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads items", func(t *testing.T) {
		path := filepath.Join(dir, "inputs.txt")
		require.NoError(t, os.WriteFile(path, []byte("a\n\nb\n"), 0o644))

		items, err := ReadItemsFile(path)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

		_, err := ReadItemsFile(path)
		assert.ErrorIs(t, err, ErrNoInput)

		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadItemsFile(filepath.Join(dir, "missing.txt"))

		var ioErr *IOError
		require.True(t, errors.As(err, &ioErr))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
