package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/steviee/go-northstar/internal/cli"
	"github.com/steviee/go-northstar/internal/requests"
)

// Version information (set by ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	BuiltBy   = "unknown"
)

func main() {
	requests.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCommand(Version, Commit, BuildTime, BuiltBy)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
