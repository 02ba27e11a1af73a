package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Sternrassler/scrapingbee-cli/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(version)
	root.SetArgs(args)
	return cli.ExitCode(root.ExecuteContext(ctx), os.Stderr)
}
