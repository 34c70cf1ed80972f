package demoserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DemoServer serves fixture pages that exercise go2web: HTML with links and
// images, JSON, plain text, legacy charsets, redirect chains and a fake
// search engine. Every response carries Content-Length so bodies are never
// chunked.
type DemoServer struct {
	cfg    Config
	router chi.Router

	mu   sync.Mutex
	hits map[string]int
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.SearchResults <= 0 {
		cfg.SearchResults = DefaultConfig().SearchResults
	}
	s := &DemoServer{
		cfg:    cfg,
		router: chi.NewRouter(),
		hits:   make(map[string]int),
	}
	s.routes()
	return s
}

func (s *DemoServer) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)

	r.Get("/", s.homeHandler)
	r.Get("/json", s.jsonHandler)
	r.Get("/plain", s.plainHandler)
	r.Get("/latin1", s.latin1Handler)
	r.Get("/negotiate", s.negotiateHandler)
	r.Get("/redirect/{n}", s.redirectHandler)
	r.Get("/moved", s.movedHandler)
	r.Get("/relative/a/b", s.relativeRedirectHandler)
	r.Get("/relative/a/c", s.relativeTargetHandler)
	r.Get("/old", s.oldDocsHandler)
	r.Get("/docs/new", s.newDocsHandler)
	r.Get("/html/", s.searchHandler)
	r.Get("/l/", s.redirectorHandler)
	r.Get("/status/{code}", s.statusHandler)
	r.Get("/static/*", s.staticHandler)
}

// Handler exposes the router, e.g. for httptest servers.
func (s *DemoServer) Handler() http.Handler {
	return s.router
}

// Hits returns how many requests were made for path.
func (s *DemoServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *DemoServer) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// write sends a complete response with an explicit Content-Length.
func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func redirect(w http.ResponseWriter, status int, location string) {
	w.Header().Set("Location", location)
	write(w, status, "text/html", []byte("<a href=\""+htmlEscape(location)+"\">moved</a>"))
}

func (s *DemoServer) homeHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "text/html; charset=utf-8", []byte(homePage))
}

func (s *DemoServer) jsonHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "application/json", []byte(jsonDoc))
}

func (s *DemoServer) plainHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "text/plain; charset=utf-8", []byte(plainText))
}

func (s *DemoServer) latin1Handler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "text/html; charset=iso-8859-1", []byte("<p>caf\xe9 cr\xe8me</p>"))
}

// negotiateHandler answers with JSON when the client asks for it.
func (s *DemoServer) negotiateHandler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		write(w, http.StatusOK, "application/json", []byte(`{"a":1}`))
		return
	}
	write(w, http.StatusOK, "text/html", []byte("<p>negotiated html</p>"))
}

// redirectHandler sends /redirect/n to /redirect/n-1; /redirect/0 is the end.
func (s *DemoServer) redirectHandler(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		write(w, http.StatusBadRequest, "text/plain", []byte("bad hop count"))
		return
	}
	if n == 0 {
		write(w, http.StatusOK, "text/html", []byte(arrivedPage))
		return
	}
	redirect(w, http.StatusFound, fmt.Sprintf("/redirect/%d", n-1))
}

func (s *DemoServer) movedHandler(w http.ResponseWriter, r *http.Request) {
	redirect(w, http.StatusMovedPermanently, "http://"+r.Host+"/")
}

func (s *DemoServer) relativeRedirectHandler(w http.ResponseWriter, r *http.Request) {
	redirect(w, http.StatusFound, "c")
}

func (s *DemoServer) relativeTargetHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "text/html", []byte(relativeTarget))
}

func (s *DemoServer) oldDocsHandler(w http.ResponseWriter, r *http.Request) {
	redirect(w, http.StatusFound, "/docs/new")
}

func (s *DemoServer) newDocsHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "text/html", []byte(docsPage))
}

func (s *DemoServer) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	write(w, http.StatusOK, "text/html; charset=utf-8", []byte(searchPage(r.Host, q, s.cfg.SearchResults)))
}

func (s *DemoServer) redirectorHandler(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("uddg")
	if target == "" {
		write(w, http.StatusBadRequest, "text/plain", []byte("missing uddg"))
		return
	}
	redirect(w, http.StatusFound, target)
}

func (s *DemoServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil || code < 200 || code > 599 {
		write(w, http.StatusBadRequest, "text/plain", []byte("bad status"))
		return
	}
	write(w, code, "text/plain", []byte(http.StatusText(code)))
}

// staticHandler serves placeholder static files.
func (s *DemoServer) staticHandler(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusOK, "application/javascript", []byte(`console.log("Loaded: `+r.URL.Path+`");`))
}
