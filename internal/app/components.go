package app

import (
	"fmt"

	"github.com/raysh454/go2web/internal/cache"
	"github.com/raysh454/go2web/internal/fetcher"
	"github.com/raysh454/go2web/internal/format"
	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/search"
	"github.com/raysh454/go2web/internal/webclient"
)

// Components are the services one run needs, built from a Config.
type Components struct {
	WebClient webclient.WebClient

	// Cache is nil when caching is disabled.
	Cache cache.Store

	Fetcher   *fetcher.Fetcher
	Search    *search.Client
	Formatter format.Formatter
}

// NewComponents builds the transport, cache, fetcher, search client and
// formatter. On error everything already opened is closed again.
func NewComponents(cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	var store cache.Store
	if !cfg.NoCache {
		cacheCfg := cfg.CacheCfg
		if cacheCfg.Dir == "" {
			dir, err := expandPath(cfg.CacheDir)
			if err != nil {
				_ = wc.Close()
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			cacheCfg.Dir = dir
		}
		store, err = cache.Open(cacheCfg, logger)
		if err != nil {
			_ = wc.Close()
			return nil, fmt.Errorf("open cache: %w", err)
		}
	}

	f, err := fetcher.New(wc, store, logger, cfg.FetcherCfg)
	if err != nil {
		_ = wc.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("new fetcher: %w", err)
	}

	return &Components{
		WebClient: wc,
		Cache:     store,
		Fetcher:   f,
		Search:    search.NewClient(f, logger, cfg.SearchCfg),
		Formatter: format.NewTextFormatter(logger),
	}, nil
}

// Close releases the web client and the cache.
func (c *Components) Close() error {
	var firstErr error
	if err := c.WebClient.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close webclient: %w", err)
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close cache: %w", err)
		}
	}
	return firstErr
}
