package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Cache namespaces.
const (
	NamespaceItems      = "items"
	NamespaceCategories = "categories"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Cache is a local key/value store of JSON values on SQLite. Entries never
// expire; the operator clears them.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenCache opens (or creates) the cache database at path. ":memory:"
// gives a throwaway cache.
func OpenCache(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: an in-memory database exists per connection, and the
	// CLI never needs parallel access.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &Cache{db: db, logger: orDiscard(logger).With("component", "cache")}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get decodes the entry at (namespace, key) into dst and reports whether it
// existed.
func (c *Cache) Get(ctx context.Context, namespace, key string, dst any) (bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE namespace = ? AND key = ?`, namespace, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		c.logger.Debug("cache miss", "namespace", namespace)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache entry: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	c.logger.Debug("cache hit", "namespace", namespace)
	return true, nil
}

// Put stores v at (namespace, key), replacing any previous value.
func (c *Cache) Put(ctx context.Context, namespace, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (namespace, key, value) VALUES (?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`,
		namespace, key, string(data))
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Count returns the number of entries in namespace.
func (c *Cache) Count(ctx context.Context, namespace string) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cache_entries WHERE namespace = ?`, namespace).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// ClearNamespace drops every entry in namespace.
func (c *Cache) ClearNamespace(ctx context.Context, namespace string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("clear %s cache: %w", namespace, err)
	}
	return nil
}

// Clear drops everything.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
