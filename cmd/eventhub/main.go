// Command eventhub is the terminal client of an eventhub gateway. The signed-in
// user, the event cache, notifications and preferences survive between runs
// in a local state database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/eventhub/internal/config"
	"github.com/example/eventhub/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(stderr, "eventhub: %v\n", err)
		return 1
	}
	return runWithConfig(ctx, cfg, logging.New(stderr, cfg.LogLevel), args, stdout, stderr)
}

func runWithConfig(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "eventhub: unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}

	a, err := openApp(ctx, cfg, logger, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "eventhub: %v\n", err)
		return 1
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("failed to close client state", "error", cerr)
		}
	}()

	if cmd.private && !a.store.Snapshot().IsAuthenticated() {
		fmt.Fprintln(stderr, "eventhub: not signed in; run `eventhub signin` first")
		return 1
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		fmt.Fprintf(stderr, "eventhub %s: %s\n", args[0], describe(err))
		return 1
	}
	return 0
}
