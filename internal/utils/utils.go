package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when no usable host can be extracted from a URL.
var ErrInvalidURL = errors.New("invalid url")

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// Target is a URL split into the parts needed to open a connection.
type Target struct {
	Scheme string
	Host   string

	// Port is zero unless the URL named one explicitly.
	Port uint16

	// Path always starts with "/" and carries the query string.
	Path string
}

// HasScheme reports whether raw starts with "scheme://".
func HasScheme(raw string) bool {
	return schemePrefix.MatchString(raw)
}

// WithDefaultScheme trims raw and prepends "http://" when it has no scheme.
// The result is the string cache keys are derived from.
//
//	WithDefaultScheme("example.com/page")   → "http://example.com/page"
//	WithDefaultScheme("https://example.com") → "https://example.com"
func WithDefaultScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if HasScheme(raw) {
		return raw
	}
	return "http://" + raw
}

// ResolveTarget normalizes a user supplied URL into a Target.
// Host syntax is not checked; a bad host surfaces when dialing.
func ResolveTarget(raw string) (*Target, error) {
	full := WithDefaultScheme(raw)

	u, err := url.Parse(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidURL, raw, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	var port uint16
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: bad port %q", ErrInvalidURL, p)
		}
		port = uint16(n)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return &Target{Scheme: scheme, Host: host, Port: port, Path: path}, nil
}

// Authority returns host or host:port as it belongs in a URL.
func (t *Target) Authority() string {
	if t.Port != 0 {
		return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
	}
	if strings.Contains(t.Host, ":") {
		return "[" + t.Host + "]"
	}
	return t.Host
}

func (t *Target) String() string {
	return t.Scheme + "://" + t.Authority() + t.Path
}

// ResolveLocation turns a Location header value into an absolute URL.
//
// Examples, current = http://example.com/docs/page:
//
//	ResolveLocation(cur, "https://other.org/x") → "https://other.org/x"
//	ResolveLocation(cur, "//cdn.example.com/y") → "http://cdn.example.com/y"
//	ResolveLocation(cur, "/new")                → "http://example.com/new"
//	ResolveLocation(cur, "next")                → "http://example.com/docs/next"
func ResolveLocation(current *Target, location string) string {
	location = strings.TrimSpace(location)
	if HasScheme(location) {
		return location
	}
	if strings.HasPrefix(location, "//") {
		return current.Scheme + ":" + location
	}

	origin := current.Scheme + "://" + current.Authority()
	if strings.HasPrefix(location, "/") {
		return origin + location
	}

	base, err := url.Parse(current.String())
	if err != nil {
		return origin + "/" + location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return origin + "/" + location
	}
	resolved := base.ResolveReference(ref)
	return origin + resolved.RequestURI()
}

// DialHost returns the ASCII form of host for DNS and TLS name checks.
// Hosts that idna rejects are returned unchanged and fail at connect time.
func DialHost(host string) string {
	if isASCII(host) {
		return host
	}
	if puny, err := idna.Lookup.ToASCII(strings.ToLower(host)); err == nil {
		return puny
	}
	return host
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
