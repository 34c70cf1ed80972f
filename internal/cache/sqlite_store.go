package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/go2web/internal/logging"
	"github.com/raysh454/go2web/internal/model"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
	key          TEXT PRIMARY KEY,
	url          TEXT NOT NULL,
	final_url    TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL,
	body         TEXT NOT NULL,
	stored_at    INTEGER NOT NULL
);`

// SQLiteStore keeps all entries in a single database file, dir/cache.db.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

func NewSQLiteStore(dir string, logger logging.Logger) (*SQLiteStore, error) {
	if dir == "" {
		return nil, errors.New("cache: empty directory")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Debug("sqlite cache opened", logging.Field{Key: "path", Value: dbPath})
	return &SQLiteStore{db: db, logger: logger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return migrateFinalURL(db)
}

// migrateFinalURL adds the final_url column to databases created before it existed.
func migrateFinalURL(db *sql.DB) error {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('entries') WHERE name = 'final_url'`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect entries table: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE entries ADD COLUMN final_url TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("failed to add final_url column: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, url string) (*model.CacheEntry, bool, error) {
	var entry model.CacheEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, body, final_url FROM entries WHERE key = ?`, Key(url),
	).Scan(&entry.ContentType, &entry.Body, &entry.FinalURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache entry: %w", err)
	}
	return &entry, true, nil
}

func (s *SQLiteStore) Store(ctx context.Context, url string, entry model.CacheEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (key, url, final_url, content_type, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			final_url = excluded.final_url,
			content_type = excluded.content_type,
			body = excluded.body,
			stored_at = excluded.stored_at`,
		Key(url), url, entry.FinalURL, entry.ContentType, entry.Body, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
