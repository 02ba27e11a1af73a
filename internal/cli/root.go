// Package cli implements the scrapingbee command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/scrapingbee-cli/pkg/config"
	"github.com/Sternrassler/scrapingbee-cli/pkg/logging"
	"github.com/Sternrassler/scrapingbee-cli/pkg/metrics"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	apiKey         string
	output         string
	verbose        bool
	batchOutputDir string
	concurrency    int

	configPath  string
	logLevel    string
	debug       bool
	timeout     int
	redisAddr   string
	cacheTTL    int
	metricsFile string
}

// app is the state resolved once per invocation by the root command.
type app struct {
	flags  globalFlags
	cfg    config.Config
	logger zerolog.Logger
}

// exitInterrupted is the conventional exit status after SIGINT.
const exitInterrupted = 130

// ExitError is an error that has already been reported to the user and only
// carries the process exit code.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps the result of Execute to a process exit code, printing
// errors that were not reported yet as "Error: <msg>" to w.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	return 1
}

// NewRootCmd creates the root Cobra command for the scrapingbee CLI.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "scrapingbee",
		Short: "ScrapingBee CLI - Web scraping API client",
		Long: `ScrapingBee CLI - Web scraping API client.

Supports HTML scraping, Google Search, Fast Search, Amazon, Walmart,
YouTube, and ChatGPT endpoints.

Set your API key via --api-key or SCRAPINGBEE_API_KEY.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.apiKey, "api-key", "", "ScrapingBee API key (or set "+config.EnvAPIKey+")")
	f.StringVarP(&a.flags.output, "output", "o", "", "write output to file instead of stdout")
	f.BoolVarP(&a.flags.verbose, "verbose", "v", false, "show response headers and status code")
	f.StringVar(&a.flags.batchOutputDir, "batch-output-dir", "", "batch mode: folder for output files (default: batch_<timestamp>)")
	f.IntVar(&a.flags.concurrency, "concurrency", 0, "batch mode: max concurrent requests (0 = use limit from usage API)")
	f.StringVar(&a.flags.configPath, "config", "", "config file (default: <user config dir>/scrapingbee/config.yaml)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	f.IntVar(&a.flags.timeout, "request-timeout", 0, "per-request timeout in seconds (default 150)")
	f.StringVar(&a.flags.redisAddr, "redis-addr", "", "Redis address for the single-request response cache")
	f.IntVar(&a.flags.cacheTTL, "cache-ttl", 0, "response cache TTL in seconds (0 = cache disabled)")
	f.StringVar(&a.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command")

	cmd.AddCommand(
		newUsageCmd(a),
		newScrapeCmd(a),
		newGoogleCmd(a),
		newFastSearchCmd(a),
		newAmazonProductCmd(a),
		newAmazonSearchCmd(a),
		newWalmartSearchCmd(a),
		newWalmartProductCmd(a),
		newYouTubeSearchCmd(a),
		newYouTubeMetadataCmd(a),
		newYouTubeTranscriptCmd(a),
		newYouTubeTrainabilityCmd(a),
		newChatGPTCmd(a),
	)

	for _, sub := range cmd.Commands() {
		if sub.RunE != nil {
			sub.RunE = a.withMetrics(sub.RunE)
		}
	}

	return cmd
}

// withMetrics writes the metrics file after run, whether or not run failed.
func (a *app) withMetrics(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		runErr := run(cmd, args)
		if a.cfg.MetricsFile == "" {
			return runErr
		}
		if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			if runErr != nil {
				a.logger.Error().Err(err).Str("path", a.cfg.MetricsFile).Msg("Failed to write metrics file")
				return runErr
			}
			return err
		}
		return nil
	}
}

// setup resolves configuration with precedence defaults → file → env → flags
// and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	if a.flags.concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", a.flags.concurrency)
	}
	if a.flags.cacheTTL < 0 {
		return fmt.Errorf("cache-ttl must be >= 0, got %d", a.flags.cacheTTL)
	}
	if a.flags.timeout < 0 {
		return fmt.Errorf("request-timeout must be >= 0, got %d", a.flags.timeout)
	}

	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = a.flags.apiKey
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.timeout > 0 {
		cfg.Timeout = time.Duration(a.flags.timeout) * time.Second
	}
	if flags.Changed("redis-addr") {
		cfg.Cache.RedisAddr = a.flags.redisAddr
	}
	if a.flags.cacheTTL > 0 {
		cfg.Cache.TTL = time.Duration(a.flags.cacheTTL) * time.Second
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.flags.metricsFile
	}

	logCfg := logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	}
	if a.flags.debug {
		logCfg.Level = logging.LevelDebug
		logCfg.Pretty = true
	}
	logging.Setup(logCfg)

	a.cfg = cfg
	a.logger = logging.NewLogger("cli")
	a.logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return nil
}

const rootCmdExample = `  # Check credits and concurrency
  scrapingbee usage

  # Scrape a page with JavaScript rendering
  scrapingbee scrape https://example.com --render-js true

  # Search Google and save the JSON
  scrapingbee google "web scraping" -o results.json

  # Batch: one URL per line, 3 at a time
  scrapingbee scrape --input-file urls.txt --concurrency 3 --batch-output-dir out`
