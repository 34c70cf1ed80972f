package model

import (
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"

	// DefaultContentType is assumed when a response carries no Content-Type.
	DefaultContentType = "text/html"
)

// Header is a single name/value pair as it appears on the wire.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list with case-insensitive lookup.
type Headers []Header

// Get returns the value of the named header, or "" if absent.
func (h Headers) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup returns the value of the named header and whether it was present.
func (h Headers) Lookup(name string) (string, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if strings.EqualFold(h[i].Name, name) {
			return h[i].Value, true
		}
	}
	return "", false
}

// Has reports whether the named header is present.
func (h Headers) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// Set replaces the value of an existing header in place, keeping its position,
// or appends a new one.
func (h *Headers) Set(name, value string) {
	for i := range *h {
		if strings.EqualFold((*h)[i].Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Header{Name: name, Value: value})
}

// Clone returns a copy that shares no memory with h.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}

// Request is one GET attempt against one origin. Build a new one per attempt.
type Request struct {
	Method string
	Scheme string
	Host   string

	// Port is zero when the URL did not name one.
	Port uint16

	// Path includes the query string, if any.
	Path string

	Headers Headers
}

// EffectivePort returns the explicit port or the scheme default.
func (r *Request) EffectivePort() uint16 {
	if r.Port != 0 {
		return r.Port
	}
	if r.Scheme == SchemeHTTPS {
		return 443
	}
	return 80
}

// Authority is the value sent in the Host header.
func (r *Request) Authority() string {
	if r.Port != 0 {
		return net.JoinHostPort(r.Host, strconv.Itoa(int(r.Port)))
	}
	if strings.Contains(r.Host, ":") {
		return "[" + r.Host + "]"
	}
	return r.Host
}

// URL renders the request target as an absolute URL.
func (r *Request) URL() string {
	path := r.Path
	if path == "" {
		path = "/"
	}
	return r.Scheme + "://" + r.Authority() + path
}

// Response is a parsed HTTP response.
type Response struct {
	Proto      string
	StatusCode int
	Reason     string
	Headers    Headers
	Body       []byte
	FetchedAt  time.Time
}

// ContentType returns the Content-Type header or DefaultContentType.
func (r *Response) ContentType() string {
	if ct := strings.TrimSpace(r.Headers.Get("Content-Type")); ct != "" {
		return ct
	}
	return DefaultContentType
}

// Location returns the Location header and whether it was present.
func (r *Response) Location() (string, bool) {
	v, ok := r.Headers.Lookup("Location")
	return strings.TrimSpace(v), ok
}

// CacheEntry is what the cache keeps per original request URL.
type CacheEntry struct {
	ContentType string `json:"content_type"`
	Body        string `json:"body"`

	// FinalURL is where the redirect chain ended; relative links in Body
	// resolve against it. Empty for entries stored before it was recorded.
	FinalURL string `json:"final_url,omitempty"`
}
