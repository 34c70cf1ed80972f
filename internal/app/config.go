package app

import (
	"os"
	"path/filepath"

	"github.com/raysh454/go2web/internal/cache"
	"github.com/raysh454/go2web/internal/cli"
	"github.com/raysh454/go2web/internal/fetcher"
	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/search"
	"github.com/raysh454/go2web/internal/webclient"
)

// Config contains the runtime configuration of a single go2web run.
// DefaultConfig supplies the values; command-line flags override them.
type Config struct {
	// CacheDir is where the fs and sqlite cache backends keep their data.
	// A leading "~" is expanded to the user's home directory.
	CacheDir string

	// NoCache disables the cache entirely for this run.
	NoCache bool

	CacheCfg     cache.Config
	WebClientCfg webclient.Config
	FetcherCfg   fetcher.Config
	SearchCfg    search.Config

	LogLevel logging.Level
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheDir: "~/.go2web/cache",
		CacheCfg: cache.Config{
			Backend: cache.BackendFS,
		},
		WebClientCfg: webclient.Config{
			Client:    webclient.ClientRawSocket,
			ReadChunk: webclient.DefaultReadChunk,
		},
		FetcherCfg: fetcher.Config{
			MaxRedirects: fetcher.DefaultMaxRedirects,
			UserAgent:    fetcher.DefaultUserAgent,
		},
		SearchCfg: search.Config{
			Engine:     search.DuckDuckGo,
			MaxResults: search.DefaultMaxResults,
		},
		LogLevel: logging.LevelWarn,
	}
}

// ApplyArgs overrides configuration from parsed command-line flags.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	if args.CacheDir != "" {
		c.CacheDir = args.CacheDir
	}
	if args.CacheBackend != "" {
		c.CacheCfg.Backend = cache.Backend(args.CacheBackend)
	}
	if args.Backend != "" {
		c.WebClientCfg.Client = webclient.Client(args.Backend)
	}
	if args.NoCache {
		c.NoCache = true
	}
	if args.LogLevel != "" {
		c.LogLevel = logging.ParseLevel(args.LogLevel)
	}
	if args.Verbose {
		c.LogLevel = logging.LevelDebug
	}
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
