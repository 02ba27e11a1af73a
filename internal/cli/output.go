package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
)

// Response headers reported in verbose mode, in display order.
var verboseHeaders = []struct {
	header string
	label  string
}{
	{"Spb-Cost", "Credit Cost"},
	{"Spb-Resolved-Url", "Resolved URL"},
	{"Spb-Initial-Status-Code", "Initial Status Code"},
}

// writeResponse prints a single-item response. A non-2xx status is reported
// on stderr and turned into exit code 1.
func (a *app) writeResponse(cmd *cobra.Command, resp *client.Response) error {
	stderr := cmd.ErrOrStderr()

	if !client.IsSuccess(resp.StatusCode) {
		fmt.Fprintf(stderr, "Error: HTTP %d\n", resp.StatusCode)
		fmt.Fprintln(stderr, prettyJSON(resp.Body))
		return &ExitError{Code: 1}
	}

	if a.flags.verbose {
		fmt.Fprintf(stderr, "HTTP Status: %d\n", resp.StatusCode)
		for _, h := range verboseHeaders {
			if v := resp.Header.Get(h.header); v != "" {
				fmt.Fprintf(stderr, "%s: %s\n", h.label, v)
			}
		}
		fmt.Fprintln(stderr, "---")
	}

	return writeOutput(cmd.OutOrStdout(), a.flags.output, resp.Body)
}

// writeOutput writes data to path, or to stdout with a trailing newline.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if _, err := stdout.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		_, _ = io.WriteString(stdout, "\n")
	}
	return nil
}

// prettyJSON indents JSON with two spaces, or returns data as text.
func prettyJSON(data []byte) string {
	var buf bytes.Buffer
	if json.Valid(data) {
		if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err == nil {
			return buf.String()
		}
	}
	return strings.ToValidUTF8(string(data), "�")
}
