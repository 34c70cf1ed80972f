// Package search queries a web search engine's HTML endpoint through the
// regular fetch pipeline and scrapes the result links out of the page.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/go2web/internal/fetcher"
	"github.com/raysh454/go2web/internal/logging"
)

// DefaultMaxResults bounds how many results Search returns.
const DefaultMaxResults = 10

// ErrEmptyQuery is returned when no search terms were given.
var ErrEmptyQuery = errors.New("empty search query")

// Engine describes how to query one search engine and find its result links.
type Engine struct {
	Name string

	// QueryURL is the URL prefix the escaped query is appended to.
	QueryURL string

	// ResultSelector matches the anchor element of each organic result.
	ResultSelector string
}

// DuckDuckGo is the html-only DuckDuckGo frontend, which needs no JavaScript.
var DuckDuckGo = Engine{
	Name:           "duckduckgo",
	QueryURL:       "https://html.duckduckgo.com/html/?q=",
	ResultSelector: "a.result__a",
}

type Config struct {
	Engine     Engine
	MaxResults int
}

// Result is one scraped search hit.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// PageFetcher is the part of fetcher.Fetcher the search client needs.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Page, error)
}

type Client struct {
	cfg     Config
	fetcher PageFetcher
	logger  logging.Logger
}

func NewClient(f PageFetcher, logger logging.Logger, cfg Config) *Client {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.Engine.QueryURL == "" {
		cfg.Engine = DuckDuckGo
	}
	if cfg.Engine.ResultSelector == "" {
		cfg.Engine.ResultSelector = DuckDuckGo.ResultSelector
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	return &Client{
		cfg:     cfg,
		fetcher: f,
		logger:  logger.With(logging.Field{Key: "component", Value: "search"}),
	}
}

// QueryURL joins terms with spaces and returns the engine URL for them.
func (c *Client) QueryURL(terms []string) string {
	return c.cfg.Engine.QueryURL + url.QueryEscape(strings.Join(terms, " "))
}

// Search runs the query and returns up to MaxResults results. Search pages
// are never served from or written to the cache.
func (c *Client) Search(ctx context.Context, terms []string) ([]Result, error) {
	if strings.TrimSpace(strings.Join(terms, "")) == "" {
		return nil, ErrEmptyQuery
	}

	queryURL := c.QueryURL(terms)
	c.logger.Debug("searching",
		logging.Field{Key: "engine", Value: c.cfg.Engine.Name},
		logging.Field{Key: "url", Value: queryURL})

	page, err := c.fetcher.Fetch(ctx, queryURL, fetcher.Options{Accept: fetcher.AcceptHTML, NoCache: true})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", strings.Join(terms, " "), err)
	}

	results, err := ParseResults(page.Body, c.cfg.Engine.ResultSelector, c.cfg.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("search: parse results: %w", err)
	}
	if len(results) == 0 {
		c.logger.Warn("search returned no results",
			logging.Field{Key: "status", Value: page.StatusCode})
	}
	return results, nil
}

// ParseResults extracts up to limit results matched by selector from an HTML
// results page. Redirector links are unwrapped, protocol-relative links get
// https, and duplicates or entries without a title or link are dropped.
func ParseResults(body, selector string, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var results []Result
	seen := make(map[string]bool)
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Closest(".result--ad").Length() > 0 {
			return true
		}
		href, _ := s.Attr("href")
		link := cleanLink(href)
		title := strings.Join(strings.Fields(s.Text()), " ")
		if link == "" || title == "" || isAdLink(link) || seen[link] {
			return true
		}
		seen[link] = true
		results = append(results, Result{Title: title, Link: link})
		return len(results) < limit
	})
	return results, nil
}

// cleanLink unwraps "/l/?uddg=<target>" redirector links.
func cleanLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		// Engine-relative link with nothing to unwrap.
		return ""
	}
	return href
}

func isAdLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.HasSuffix(host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/y.js")
}
