package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
)

// ErrUsage marks command-line errors; the caller exits with status 2.
var ErrUsage = errors.New("usage error")

const description = "go2web - HTTP client and search utility.\n\n" +
	"Fetches a URL over a raw HTTP/1.1 connection and prints it as readable text, " +
	"or searches the web and prints the top results."

// grammar is the kong model of the command line.
type grammar struct {
	URL    string   `name:"url" short:"u" placeholder:"URL" help:"Make an HTTP request to the specified URL and print the response."`
	Search string   `name:"search" short:"s" placeholder:"TERM" help:"Search the term using a search engine and print the top 10 results. Further words are added to the query."`
	Terms  []string `arg:"" optional:"" hidden:"" sep:"none"`

	JSON         bool   `name:"json" help:"Ask for application/json instead of text/html."`
	NoCache      bool   `name:"no-cache" help:"Do not read from or write to the response cache."`
	CacheDir     string `name:"cache-dir" placeholder:"DIR" help:"Cache directory (default ~/.go2web/cache)."`
	CacheBackend string `name:"cache-backend" enum:"fs,sqlite,memory" default:"fs" help:"Cache backend: fs, sqlite or memory."`
	Backend      string `name:"backend" enum:"rawsocket,nethttp" default:"rawsocket" hidden:"" help:"Transport backend."`
	LogLevel     string `name:"log-level" placeholder:"LEVEL" help:"Log level for stderr: debug, info, warn or error (default warn)."`
	Verbose      bool   `name:"verbose" short:"v" help:"Log debug output to stderr. Overrides --log-level."`
}

// CLIArgs are the command-line arguments that control a single run.
type CLIArgs struct {
	// ShowHelp is set when usage was printed and nothing else should run.
	ShowHelp bool

	URL string

	// SearchTerms is non-empty in search mode.
	SearchTerms []string

	JSON         bool
	NoCache      bool
	CacheDir     string
	CacheBackend string
	Backend      string
	LogLevel     string
	Verbose      bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Help text goes to
// stdout. The function does not read os.Args and never exits the process.
// With no arguments it prints usage and returns ShowHelp.
func ParseArgs(args []string, stdout io.Writer) (*CLIArgs, error) {
	var g grammar
	helpShown := false

	parser, err := kong.New(&g,
		kong.Name("go2web"),
		kong.Description(description),
		kong.Writers(stdout, stdout),
		kong.Exit(func(int) { helpShown = true }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("build cli parser: %w", err)
	}

	parseArgs := args
	if len(args) == 0 {
		parseArgs = []string{"--help"}
	}

	_, perr := parser.Parse(parseArgs)
	if helpShown {
		return &CLIArgs{ShowHelp: true, RawArgs: args}, nil
	}
	if perr != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, perr)
	}

	out := &CLIArgs{
		URL:          strings.TrimSpace(g.URL),
		JSON:         g.JSON,
		NoCache:      g.NoCache,
		CacheDir:     g.CacheDir,
		CacheBackend: g.CacheBackend,
		Backend:      g.Backend,
		LogLevel:     strings.TrimSpace(g.LogLevel),
		Verbose:      g.Verbose,
		RawArgs:      args,
	}
	if g.Search != "" {
		out.SearchTerms = append([]string{g.Search}, g.Terms...)
	}

	switch {
	case out.URL != "" && out.SearchTerms != nil:
		return nil, fmt.Errorf("%w: --url and --search cannot be used together", ErrUsage)
	case out.SearchTerms == nil && len(g.Terms) > 0:
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, g.Terms[0])
	case out.URL == "" && out.SearchTerms == nil:
		return nil, fmt.Errorf("%w: one of --url or --search is required", ErrUsage)
	}
	return out, nil
}

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	_, _ = ParseArgs(nil, w)
}
