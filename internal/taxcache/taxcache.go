// Package taxcache keeps taxonomy lookups on disk between runs.
package taxcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultTTL = 7 * 24 * time.Hour

// Cache maps skill URIs to the occupations linked to them.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache database at path. A non-positive ttl
// means DefaultTTL.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if path == "" {
		return nil, errors.New("taxcache: path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("taxcache: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("taxcache: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("taxcache: init schema: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS skill_occupations (
		skill_uri   TEXT PRIMARY KEY,
		occupations TEXT NOT NULL,
		fetched_at  INTEGER NOT NULL
	)`)
	return err
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached occupations of a skill. Expired entries are misses.
func (c *Cache) Get(ctx context.Context, skillURI string) ([]string, bool, error) {
	var (
		raw       string
		fetchedAt int64
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT occupations, fetched_at FROM skill_occupations WHERE skill_uri = ?`,
		skillURI,
	).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("taxcache: get %q: %w", skillURI, err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	var occupations []string
	if err := json.Unmarshal([]byte(raw), &occupations); err != nil {
		return nil, false, fmt.Errorf("taxcache: decode %q: %w", skillURI, err)
	}

	return occupations, true, nil
}

func (c *Cache) Put(ctx context.Context, skillURI string, occupations []string) error {
	if occupations == nil {
		occupations = []string{}
	}

	raw, err := json.Marshal(occupations)
	if err != nil {
		return fmt.Errorf("taxcache: encode %q: %w", skillURI, err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO skill_occupations (skill_uri, occupations, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(skill_uri) DO UPDATE SET occupations = excluded.occupations, fetched_at = excluded.fetched_at`,
		skillURI, string(raw), c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("taxcache: put %q: %w", skillURI, err)
	}
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.ExecContext(ctx, `DELETE FROM skill_occupations WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("taxcache: purge: %w", err)
	}
	return res.RowsAffected()
}
