package batch

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
)

func sampleResults() []Result {
	return []Result{
		{Index: 3, Input: "c", StatusCode: 200, Body: []byte("third")},
		{Index: 1, Input: "a", StatusCode: 200, Body: []byte("first")},
		{
			Index: 2, Input: "b", StatusCode: 500, Body: []byte("rate limited"),
			Err: &client.APIError{StatusCode: 500, Class: client.ErrorClassServer, Body: []byte("rate limited")},
		},
		{
			Index: 4, Input: "d",
			Err: &client.TransportError{Endpoint: "scrape", Err: errors.New("timeout")},
		},
	}
}

func TestMaterializer_Write(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	summary, err := NewMaterializer(&stdout, &stderr, false, zerolog.Nop()).Write(dir, sampleResults())
	require.NoError(t, err)

	assert.Equal(t, Summary{OutputDir: dir, Succeeded: 2, Failed: 2}, summary)

	assertFile(t, filepath.Join(dir, "1.txt"), "first")
	assertFile(t, filepath.Join(dir, "3.txt"), "third")
	assertFile(t, filepath.Join(dir, "2.err"), "rate limited")
	assert.NoFileExists(t, filepath.Join(dir, "2.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "4.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "4.err"), "no body, no .err file")

	assert.Equal(t, "Batch complete. Output written to "+dir+"\n", stdout.String())
	assert.Equal(t,
		"Item 2 ('b'): HTTP 500\nItem 4 ('d'): request scrape failed: timeout\n",
		stderr.String())
}

func TestMaterializer_Verbose(t *testing.T) {
	var stdout, stderr bytes.Buffer

	_, err := NewMaterializer(&stdout, &stderr, true, zerolog.Nop()).Write(t.TempDir(), sampleResults())
	require.NoError(t, err)

	assert.Equal(t,
		"Item 1: HTTP 200\nItem 2 ('b'): HTTP 500\nItem 3: HTTP 200\nItem 4 ('d'): request scrape failed: timeout\n",
		stderr.String())
}

func TestMaterializer_AllFailedStillReportsCompletion(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	results := []Result{{Index: 1, Input: "a", StatusCode: http.StatusNotFound, Err: &client.APIError{StatusCode: 404}}}
	summary, err := NewMaterializer(&stdout, &bytes.Buffer{}, false, zerolog.Nop()).Write(dir, results)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, "Batch complete. Output written to "+dir+"\n", stdout.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMaterializer_Idempotent(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	m := NewMaterializer(&bytes.Buffer{}, &bytes.Buffer{}, false, zerolog.Nop())

	_, err := m.Write(first, sampleResults())
	require.NoError(t, err)
	_, err = m.Write(second, sampleResults())
	require.NoError(t, err)

	for _, name := range []string{"1.txt", "2.err", "3.txt"} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}

func TestMaterializer_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where 1.txt should go makes the write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "1.txt"), 0o755))

	_, err := NewMaterializer(&bytes.Buffer{}, &bytes.Buffer{}, false, zerolog.Nop()).
		Write(dir, []Result{{Index: 1, Input: "a", StatusCode: 200, Body: []byte("x")}})

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, filepath.Join(dir, "1.txt"), ioErr.Path)
}

func assertFile(t *testing.T, path, expected string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expected, string(data))
}

func TestQuoteInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "https://a.example", want: `'https://a.example'`},
		{input: "it's", want: `"it's"`},
		{input: `say "hi"`, want: `'say "hi"'`},
		{input: `it's "x"`, want: `'it\'s "x"'`},
		{input: `C:\tmp`, want: `'C:\\tmp'`},
		{input: "", want: `''`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteInput(tt.input))
		})
	}
}

func TestMaterializer_FailureLineQuoting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	m := NewMaterializer(&stdout, &stderr, false, zerolog.Nop())

	_, err := m.Write(t.TempDir(), []Result{{
		Index: 2, Input: "it's", StatusCode: 404,
		Err: &client.APIError{StatusCode: 404, Class: client.ErrorClassClient},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Item 2 (\"it's\"): HTTP 404\n", stderr.String())
}
