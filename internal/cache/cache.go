// Package cache keeps fetched responses keyed by the URL the user asked for.
// Entries never expire; a hit is served without touching the network.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
)

// Store maps an original request URL to the last successful response for it.
type Store interface {
	// Lookup returns the entry stored for url, or ok=false.
	Lookup(ctx context.Context, url string) (entry *model.CacheEntry, ok bool, err error)

	// Store saves entry under url, replacing any previous one.
	Store(ctx context.Context, url string, entry model.CacheEntry) error

	Close() error
}

type Backend string

const (
	BackendFS     Backend = "fs"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Config selects and locates a cache backend.
type Config struct {
	Backend Backend `json:"backend,omitempty"`

	// Dir is the cache directory for the fs and sqlite backends.
	Dir string `json:"dir,omitempty"`
}

var ErrUnknownBackend = errors.New("unknown cache backend")

// Key derives the on-disk identifier for url: the hex SHA-256 of the string.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Open constructs the configured backend.
func Open(cfg Config, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.Field{Key: "component", Value: "cache"})

	backend := Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	if backend == "" {
		backend = BackendFS
	}

	switch backend {
	case BackendFS:
		return NewFSStore(cfg.Dir, logger)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Dir, logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
