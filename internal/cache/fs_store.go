package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"
)

// fsFormatVersion is bumped whenever fileEntry changes incompatibly.
// Files with another version are treated as misses.
const fsFormatVersion = 1

type fileEntry struct {
	Version     int       `json:"version"`
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url,omitempty"`
	ContentType string    `json:"content_type"`
	Body        string    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// FSStore keeps one JSON file per cached URL.
// Files live under dir/{first2chars}/{key}.json to avoid too many files in one directory.
type FSStore struct {
	dir    string
	logger logging.Logger
}

// NewFSStore creates the cache directory if needed.
func NewFSStore(dir string, logger logging.Logger) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New("cache: empty directory")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FSStore{dir: dir, logger: logger}, nil
}

func (s *FSStore) Lookup(_ context.Context, url string) (*model.CacheEntry, bool, error) {
	key := Key(url)
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	if fe.Version != fsFormatVersion || fe.URL != url {
		s.logger.Debug("ignoring stale cache entry",
			logging.Field{Key: "key", Value: key},
			logging.Field{Key: "version", Value: fe.Version})
		return nil, false, nil
	}

	return &model.CacheEntry{ContentType: fe.ContentType, Body: fe.Body, FinalURL: fe.FinalURL}, true, nil
}

func (s *FSStore) Store(_ context.Context, url string, entry model.CacheEntry) error {
	key := Key(url)
	data, err := json.Marshal(fileEntry{
		Version:     fsFormatVersion,
		URL:         url,
		FinalURL:    entry.FinalURL,
		ContentType: entry.ContentType,
		Body:        entry.Body,
		StoredAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := AtomicWriteFile(s.entryPath(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	s.logger.Debug("stored cache entry", logging.Field{Key: "key", Value: key}, logging.Field{Key: "url", Value: url})
	return nil
}

// Path returns the file an entry for url is (or would be) stored in.
func (s *FSStore) Path(url string) string {
	return s.entryPath(Key(url))
}

func (s *FSStore) Close() error { return nil }

// entryPath returns the filesystem path for a given key.
// Format: dir/{first2chars}/{key}.json
func (s *FSStore) entryPath(key string) string {
	return filepath.Join(s.dir, key[:2], key+".json")
}
