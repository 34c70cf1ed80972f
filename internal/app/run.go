package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/raysh454/go2web/internal/cli"
	"github.com/raysh454/go2web/internal/logging"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Main runs go2web with args and returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	parsed, err := cli.ParseArgs(args, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n\n", err)
		cli.PrintUsage(stderr)
		return ExitCode(err)
	}
	if parsed.ShowHelp {
		return ExitOK
	}

	cfg := DefaultConfig()
	cfg.ApplyArgs(parsed)
	logger := logging.NewJSONLogger(stderr, "go2web", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, parsed, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitCode(err)
	}
	return ExitOK
}

func run(ctx context.Context, cfg *Config, args *cli.CLIArgs, logger logging.Logger, stdout io.Writer) error {
	application, err := NewApplication(cfg, args, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("shutdown", logging.Field{Key: "error", Value: err})
		}
	}()
	return application.Run(ctx, stdout)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, cli.ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}
