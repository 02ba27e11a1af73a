package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/scrapingbee-cli/pkg/batch"
	"github.com/Sternrassler/scrapingbee-cli/pkg/cache"
	"github.com/Sternrassler/scrapingbee-cli/pkg/client"
	"github.com/Sternrassler/scrapingbee-cli/pkg/logging"
	"github.com/Sternrassler/scrapingbee-cli/pkg/request"
	"github.com/Sternrassler/scrapingbee-cli/pkg/usage"
)

// execute runs a request command in single-item or batch mode. noun names
// the positional input in error messages ("URL", "query", ...).
func (a *app) execute(cmd *cobra.Command, input, inputFile, noun string, opts request.Options) error {
	c, err := client.New(a.cfg)
	if err != nil {
		return err
	}

	if inputFile != "" {
		return a.runBatch(cmd, c, input, inputFile, opts)
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("expected one %s argument, or use --input-file for batch", noun)
	}
	return a.runSingle(cmd, c, input, opts)
}

func (a *app) runBatch(cmd *cobra.Command, c *client.Client, input, inputFile string, opts request.Options) error {
	runner := batch.NewRunner(batch.RunnerConfig{
		Prober:  usage.NewProber(c, logging.NewLogger("usage")),
		Doer:    c,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		Verbose: a.flags.verbose,
		Logger:  logging.NewLogger("batch"),
	})

	_, err := runner.Run(cmd.Context(), batch.RunRequest{
		PlanRequest: batch.PlanRequest{
			SingleInput:          input,
			InputFile:            inputFile,
			RequestedConcurrency: a.flags.concurrency,
			OutputDir:            a.flags.batchOutputDir,
		},
		Options: opts,
	})
	return err
}

func (a *app) runSingle(cmd *cobra.Command, c *client.Client, input string, opts request.Options) error {
	if err := request.Validate(opts); err != nil {
		return err
	}
	desc, err := request.Build(opts, input)
	if err != nil {
		return err
	}

	doer, closeCache := a.singleDoer(cmd.Context(), c)
	defer closeCache()

	resp, err := doer.Do(cmd.Context(), desc)
	if err != nil {
		return err
	}
	return a.writeResponse(cmd, resp)
}

// singleDoer wraps c with the response cache when one is configured. An
// unreachable cache is logged and skipped.
func (a *app) singleDoer(ctx context.Context, c *client.Client) (client.Doer, func()) {
	if !a.cfg.Cache.Enabled() {
		return c, func() {}
	}

	manager, err := cache.Open(ctx, a.cfg.Cache)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Response cache unavailable, continuing without it")
		return c, func() {}
	}

	doer := cache.NewDoer(c, manager, a.cfg.Cache.TTL, logging.NewLogger("cache"))
	return doer, func() { _ = manager.Close() }
}
