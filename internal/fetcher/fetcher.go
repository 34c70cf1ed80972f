package fetcher

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/raysh454/go2web/internal/cache"
	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
	"github.com/raysh454/go2web/internal/utils"
	"github.com/raysh454/go2web/internal/webclient"
)

const (
	AcceptHTML = "text/html"
	AcceptJSON = "application/json"
)

// Options adjust a single Fetch call.
type Options struct {
	// Accept is sent as the Accept header. Empty means AcceptHTML.
	Accept string

	// NoCache skips both the cache lookup and the cache store.
	NoCache bool
}

// Page is the outcome of a completed transaction.
type Page struct {
	// URL is the requested URL after scheme defaulting; it is the cache key input.
	URL string

	// FinalURL is where the redirect chain ended. On a cache hit it is the
	// value recorded with the entry, which may be empty for old entries.
	FinalURL string

	ContentType string
	Body        string
	StatusCode  int
	FromCache   bool
	Hops        int
}

// Module: fetcher
// Runs one HTTP transaction: cache lookup, request, redirects, cache store.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	store  cache.Store
	logger logging.Logger
}

// New creates a Fetcher. store may be nil, in which case nothing is cached.
func New(wc webclient.WebClient, store cache.Store, logger logging.Logger, cfg Config) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: nil webclient")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		store:  store,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch resolves rawURL, serves it from the cache when possible, and
// otherwise performs the request, following up to the configured number of
// 301/302 redirects. Only the final response is cached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*Page, error) {
	keyURL := utils.WithDefaultScheme(rawURL)
	target, err := utils.ResolveTarget(keyURL)
	if err != nil {
		return nil, err
	}

	logger := f.logger.With(
		logging.Field{Key: "txn", Value: uuid.NewString()},
		logging.Field{Key: "url", Value: keyURL})

	useCache := f.store != nil && !opts.NoCache
	if useCache {
		if page := f.lookup(ctx, logger, keyURL); page != nil {
			return page, nil
		}
	}

	resp, final, hops, err := f.follow(ctx, logger, target, opts)
	if err != nil {
		return nil, err
	}

	contentType := resp.ContentType()
	page := &Page{
		URL:         keyURL,
		FinalURL:    final.String(),
		ContentType: contentType,
		Body:        webclient.DecodeBody(contentType, resp.Body),
		StatusCode:  resp.StatusCode,
		Hops:        hops,
	}

	if useCache {
		entry := model.CacheEntry{ContentType: page.ContentType, Body: page.Body, FinalURL: page.FinalURL}
		if err := f.store.Store(ctx, keyURL, entry); err != nil {
			logger.Warn("failed to store cache entry", logging.Field{Key: "error", Value: err})
		}
	}

	logger.Info("transaction done",
		logging.Field{Key: "status", Value: page.StatusCode},
		logging.Field{Key: "final_url", Value: page.FinalURL},
		logging.Field{Key: "hops", Value: hops})
	return page, nil
}

func (f *Fetcher) lookup(ctx context.Context, logger logging.Logger, keyURL string) *Page {
	entry, ok, err := f.store.Lookup(ctx, keyURL)
	if err != nil {
		logger.Warn("cache lookup failed, fetching", logging.Field{Key: "error", Value: err})
		return nil
	}
	if !ok {
		logger.Debug("cache miss")
		return nil
	}
	logger.Debug("cache hit")
	return &Page{
		URL:         keyURL,
		FinalURL:    entry.FinalURL,
		ContentType: entry.ContentType,
		Body:        entry.Body,
		FromCache:   true,
	}
}

// follow runs the redirect loop. The budget is decremented per hop; a
// redirect arriving with no budget left is an error.
func (f *Fetcher) follow(ctx context.Context, logger logging.Logger, target *utils.Target, opts Options) (*model.Response, *utils.Target, int, error) {
	budget := f.cfg.budget()
	hops := 0

	for {
		resp, err := f.wc.Do(ctx, f.buildRequest(target, opts))
		if err != nil {
			return nil, nil, hops, fmt.Errorf("fetch %s: %w", target, err)
		}

		next, ok := nextHop(target, resp)
		if !ok {
			return resp, target, hops, nil
		}
		if budget == 0 {
			logger.Warn("redirect budget exhausted", logging.Field{Key: "at", Value: target.String()})
			return nil, nil, hops, &RedirectError{URL: target.String(), Hops: hops}
		}

		logger.Debug("following redirect",
			logging.Field{Key: "status", Value: resp.StatusCode},
			logging.Field{Key: "from", Value: target.String()},
			logging.Field{Key: "to", Value: next.String()})

		target = next
		budget--
		hops++
	}
}

// nextHop returns the redirect target when resp is a followable redirect.
func nextHop(current *utils.Target, resp *model.Response) (*utils.Target, bool) {
	if resp.StatusCode != 301 && resp.StatusCode != 302 {
		return nil, false
	}
	loc, ok := resp.Location()
	if !ok || loc == "" {
		return nil, false
	}
	next, err := utils.ResolveTarget(utils.ResolveLocation(current, loc))
	if err != nil {
		return nil, false
	}
	return next, true
}

func (f *Fetcher) buildRequest(target *utils.Target, opts Options) *model.Request {
	accept := opts.Accept
	if accept == "" {
		accept = AcceptHTML
	}
	req := &model.Request{
		Method: "GET",
		Scheme: target.Scheme,
		Host:   target.Host,
		Port:   target.Port,
		Path:   target.Path,
	}
	req.Headers = model.Headers{
		{Name: "Host", Value: req.Authority()},
		{Name: "User-Agent", Value: f.cfg.userAgent()},
		{Name: "Accept", Value: accept},
		{Name: "Connection", Value: "close"},
	}
	return req
}
