package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raysh454/go2web/internal/cache"
	"github.com/raysh454/go2web/internal/model"
	"github.com/raysh454/go2web/internal/testutil"
	"github.com/raysh454/go2web/internal/utils"
	"github.com/raysh454/go2web/internal/webclient"
)

// ─── Helpers ───────────────────────────────────────────────────────────

func newFetcher(t *testing.T, wc *testutil.DummyWebClient, store cache.Store) (*Fetcher, *testutil.DummyLogger) {
	t.Helper()
	logger := &testutil.DummyLogger{}
	f, err := New(wc, store, logger, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, logger
}

func htmlHeaders() model.Headers {
	return model.Headers{{Name: "Content-Type", Value: "text/html; charset=utf-8"}}
}

// chain scripts n redirects /r/n -> /r/n-1 -> ... -> /r/0 which returns 200.
func chain(wc *testutil.DummyWebClient, n int) {
	for i := n; i > 0; i-- {
		wc.Redirect(fmt.Sprintf("http://example.com/r/%d", i), 302, fmt.Sprintf("/r/%d", i-1))
	}
	wc.Respond("http://example.com/r/0", 200, htmlHeaders(), "<p>end</p>")
}

// ─── Basic transaction ─────────────────────────────────────────────────

func TestFetch_SchemelessURLDefaultsToHTTP(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Respond("http://example.com/page", 200, htmlHeaders(), "<h1>Hi</h1>")
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	page, err := f.Fetch(context.Background(), "example.com/page", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.URL != "http://example.com/page" {
		t.Errorf("URL = %q", page.URL)
	}
	if page.Body != "<h1>Hi</h1>" || page.StatusCode != 200 || page.FromCache {
		t.Errorf("unexpected page: %+v", page)
	}

	entry, ok, err := store.Lookup(context.Background(), "http://example.com/page")
	if err != nil || !ok {
		t.Fatalf("expected cached entry, ok=%v err=%v", ok, err)
	}
	if entry.ContentType != "text/html; charset=utf-8" || entry.Body != "<h1>Hi</h1>" {
		t.Errorf("cached entry = %+v", entry)
	}
}

func TestFetch_SendsRequiredHeaders(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f, _ := newFetcher(t, wc, nil)

	if _, err := f.Fetch(context.Background(), "http://localhost:8080/x?q=1", Options{Accept: AcceptJSON}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(wc.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(wc.Requests))
	}
	req := wc.Requests[0]
	if req.Method != "GET" || req.Path != "/x?q=1" || req.Port != 8080 {
		t.Errorf("unexpected request: %+v", req)
	}
	want := map[string]string{
		"Host":       "localhost:8080",
		"Accept":     "application/json",
		"Connection": "close",
		"User-Agent": DefaultUserAgent,
	}
	for name, v := range want {
		if got := req.Headers.Get(name); got != v {
			t.Errorf("%s = %q, want %q", name, got, v)
		}
	}
}

func TestFetch_DefaultAcceptIsHTML(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f, _ := newFetcher(t, wc, nil)

	if _, err := f.Fetch(context.Background(), "example.com", Options{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := wc.Requests[0].Headers.Get("Accept"); got != AcceptHTML {
		t.Errorf("Accept = %q", got)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f, _ := newFetcher(t, wc, nil)

	_, err := f.Fetch(context.Background(), "ftp://example.com/file", Options{})
	if !errors.Is(err, utils.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if len(wc.Requests) != 0 {
		t.Error("no request should be sent for an invalid URL")
	}
}

func TestFetch_TransportFailurePropagates(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{FailURLs: map[string]bool{"http://down.test/": true}}
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	_, err := f.Fetch(context.Background(), "down.test", Options{})
	if !errors.Is(err, webclient.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("failed transaction must not be cached")
	}
}

func TestFetch_DecodesLatin1Body(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Respond("http://example.com/", 200,
		model.Headers{{Name: "Content-Type", Value: "text/plain; charset=iso-8859-1"}},
		"caf\xe9")
	f, _ := newFetcher(t, wc, nil)

	page, err := f.Fetch(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Body != "café" {
		t.Errorf("Body = %q", page.Body)
	}
}

// ─── Redirects ─────────────────────────────────────────────────────────

func TestFetch_RelativeRedirectSameHost(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Redirect("http://example.com/old", 302, "/new")
	wc.Respond("http://example.com/new", 200, htmlHeaders(), "new page")
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	page, err := f.Fetch(context.Background(), "http://example.com/old", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	urls := wc.RequestedURLs()
	if len(urls) != 2 || urls[1] != "http://example.com/new" {
		t.Fatalf("requests = %v", urls)
	}
	if page.Body != "new page" || page.FinalURL != "http://example.com/new" || page.Hops != 1 {
		t.Errorf("unexpected page: %+v", page)
	}

	// Only the final response is stored, under the original URL.
	if store.Len() != 1 {
		t.Errorf("expected 1 cache entry, got %d", store.Len())
	}
	entry, ok, _ := store.Lookup(context.Background(), "http://example.com/old")
	if !ok || entry.Body != "new page" || entry.FinalURL != "http://example.com/new" {
		t.Errorf("cache under original url = %+v, %v", entry, ok)
	}
}

func TestFetch_AbsoluteRedirectChangesHost(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Redirect("http://a.test/", 301, "https://b.test/landing")
	wc.Respond("https://b.test/landing", 200, nil, "landed")
	f, _ := newFetcher(t, wc, nil)

	page, err := f.Fetch(context.Background(), "a.test", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.FinalURL != "https://b.test/landing" || page.Body != "landed" {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.ContentType != model.DefaultContentType {
		t.Errorf("ContentType = %q", page.ContentType)
	}
}

func TestFetch_ExactlyFiveRedirectsSucceeds(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	chain(wc, 5)
	f, _ := newFetcher(t, wc, nil)

	page, err := f.Fetch(context.Background(), "http://example.com/r/5", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.Hops != 5 || page.Body != "<p>end</p>" {
		t.Errorf("unexpected page: %+v", page)
	}
	if n := len(wc.Requests); n != 6 {
		t.Errorf("expected 6 requests, got %d", n)
	}
}

func TestFetch_SixRedirectsFails(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	chain(wc, 6)
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	_, err := f.Fetch(context.Background(), "http://example.com/r/6", Options{})
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
	var rerr *RedirectError
	if !errors.As(err, &rerr) || rerr.Hops != 5 || rerr.URL != "http://example.com/r/1" {
		t.Errorf("unexpected redirect error: %#v", err)
	}
	if n := len(wc.Requests); n != 6 {
		t.Errorf("expected 6 requests, got %d", n)
	}
	if store.Len() != 0 {
		t.Error("nothing should be cached on redirect failure")
	}
}

func TestFetch_ConfiguredBudget(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	chain(wc, 2)
	f, err := New(wc, nil, nil, Config{MaxRedirects: 1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.Fetch(context.Background(), "http://example.com/r/2", Options{}); !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
}

func TestFetch_NegativeBudgetAllowsNoHops(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Redirect("http://example.com/old", 301, "/new")
	f, err := New(wc, nil, nil, Config{MaxRedirects: -1})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.Fetch(context.Background(), "http://example.com/old", Options{})
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
	if n := len(wc.Requests); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestFetch_RedirectWithoutLocationIsFinal(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Respond("http://example.com/", 302, nil, "moved somewhere")
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	page, err := f.Fetch(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.StatusCode != 302 || page.Body != "moved somewhere" {
		t.Errorf("unexpected page: %+v", page)
	}
	if store.Len() != 1 {
		t.Error("a terminal 302 is the final response and is cached")
	}
}

func TestFetch_OtherRedirectCodesAreFinal(t *testing.T) {
	t.Parallel()
	for _, code := range []int{303, 307, 308} {
		code := code
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			t.Parallel()
			wc := &testutil.DummyWebClient{}
			wc.Redirect("http://example.com/", code, "/elsewhere")
			f, _ := newFetcher(t, wc, nil)

			page, err := f.Fetch(context.Background(), "example.com", Options{})
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if page.StatusCode != code || len(wc.Requests) != 1 {
				t.Errorf("status=%d requests=%d", page.StatusCode, len(wc.Requests))
			}
		})
	}
}

// ─── Cache ─────────────────────────────────────────────────────────────

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	store := cache.NewMemoryStore()
	_ = store.Store(context.Background(), "http://example.com/page",
		model.CacheEntry{ContentType: "application/json", Body: `{"a":1}`})
	f, _ := newFetcher(t, wc, store)

	page, err := f.Fetch(context.Background(), "  example.com/page ", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !page.FromCache || page.Body != `{"a":1}` || page.ContentType != "application/json" {
		t.Errorf("unexpected page: %+v", page)
	}
	if len(wc.Requests) != 0 {
		t.Errorf("cache hit must not touch the network, got %v", wc.RequestedURLs())
	}
}

func TestFetch_CacheHitRestoresFinalURL(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Redirect("http://example.com/old", 302, "/docs/new")
	wc.Respond("http://example.com/docs/new", 200, htmlHeaders(), `<a href="guide">Guide</a>`)
	f, _ := newFetcher(t, wc, cache.NewMemoryStore())

	fresh, err := f.Fetch(context.Background(), "http://example.com/old", Options{})
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	cached, err := f.Fetch(context.Background(), "http://example.com/old", Options{})
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if !cached.FromCache {
		t.Fatal("second fetch should be served from cache")
	}
	if cached.FinalURL != fresh.FinalURL || cached.FinalURL != "http://example.com/docs/new" {
		t.Errorf("FinalURL fresh=%q cached=%q", fresh.FinalURL, cached.FinalURL)
	}
}

func TestFetch_NoCacheBypassesStore(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	store := cache.NewMemoryStore()
	_ = store.Store(context.Background(), "http://example.com/", model.CacheEntry{Body: "stale"})
	f, _ := newFetcher(t, wc, store)

	page, err := f.Fetch(context.Background(), "example.com", Options{NoCache: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.FromCache || page.Body != "ok:http://example.com/" {
		t.Errorf("unexpected page: %+v", page)
	}
	entry, _, _ := store.Lookup(context.Background(), "http://example.com/")
	if entry.Body != "stale" {
		t.Error("--no-cache must not overwrite the stored entry")
	}
}

func TestFetch_JSONIsCachedRaw(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	wc.Respond("http://api.test/", 200,
		model.Headers{{Name: "Content-Type", Value: "application/json"}}, `{"a":1}`)
	store := cache.NewMemoryStore()
	f, _ := newFetcher(t, wc, store)

	if _, err := f.Fetch(context.Background(), "api.test", Options{Accept: AcceptJSON}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	entry, ok, _ := store.Lookup(context.Background(), "http://api.test")
	if !ok || entry.Body != `{"a":1}` || entry.ContentType != "application/json" {
		t.Fatalf("expected raw json under the defaulted url, got %+v, %v", entry, ok)
	}
	if _, ok, _ := store.Lookup(context.Background(), "http://api.test/"); ok {
		t.Error("key must be the defaulted input, not a normalized url")
	}
}

func TestFetch_CacheErrorsAreWarnings(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{}
	f, logger := newFetcher(t, wc, failingStore{})

	page, err := f.Fetch(context.Background(), "example.com", Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.FromCache {
		t.Error("lookup error must be treated as a miss")
	}
	if logger.WarnCount() != 2 {
		t.Errorf("expected 2 warnings, got %v", logger.Warns)
	}
}

type failingStore struct{}

func (failingStore) Lookup(context.Context, string) (*model.CacheEntry, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingStore) Store(context.Context, string, model.CacheEntry) error {
	return errors.New("disk on fire")
}

func (failingStore) Close() error { return nil }

// ─── Context ───────────────────────────────────────────────────────────

func TestFetch_CanceledContext(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{ResponseDelay: 50 * time.Millisecond}
	f, _ := newFetcher(t, wc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "example.com", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
