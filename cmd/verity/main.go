// Package main provides the entry point for the verity CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/verityhq/verity/internal/cli"
)

// Build-time variables set via ldflags.
var (
	version = "dev"  //nolint:gochecknoglobals // set by ldflags
	commit  = ""     //nolint:gochecknoglobals // set by ldflags
	date    = ""     //nolint:gochecknoglobals // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(1)
	}
}
