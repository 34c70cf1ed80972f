package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/raysh454/go2web/internal/cli"
	"github.com/raysh454/go2web/internal/fetcher"
	"github.com/raysh454/go2web/internal/logging"
)

// Application is the runtime state of one go2web invocation.
// It holds config, parsed CLI args and the components built from them.
type Application struct {
	Config *Config
	Args   *cli.CLIArgs
	Logger logging.Logger

	components *Components
}

// NewApplication builds the components described by cfg.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger logging.Logger) (*Application, error) {
	if args == nil {
		return nil, errors.New("application: nil args")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	components, err := NewComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:     cfg,
		Args:       args,
		Logger:     logger,
		components: components,
	}, nil
}

// Run performs the requested URL fetch or search and writes the result to out.
func (a *Application) Run(ctx context.Context, out io.Writer) error {
	p := NewPrinter(out)

	if len(a.Args.SearchTerms) > 0 {
		a.Logger.Debug("search mode", logging.Field{Key: "terms", Value: strings.Join(a.Args.SearchTerms, " ")})
		results, err := a.components.Search.Search(ctx, a.Args.SearchTerms)
		if err != nil {
			return err
		}
		return p.PrintResults(results)
	}

	opts := fetcher.Options{Accept: fetcher.AcceptHTML, NoCache: a.Config.NoCache}
	if a.Args.JSON {
		opts.Accept = fetcher.AcceptJSON
	}

	page, err := a.components.Fetcher.Fetch(ctx, a.Args.URL, opts)
	if err != nil {
		return err
	}

	base := page.FinalURL
	if base == "" {
		base = page.URL
	}
	text := a.components.Formatter.WithBaseURL(base).Format(page.ContentType, page.Body)
	return p.PrintText(text)
}

// Close releases the application's components.
func (a *Application) Close() error {
	if a == nil || a.components == nil {
		return nil
	}
	if err := a.components.Close(); err != nil {
		return fmt.Errorf("close application: %w", err)
	}
	return nil
}
