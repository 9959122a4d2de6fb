// Package sqlite provides the SQLite-backed IGDB cache store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/game-reviews/internal/igdb/cache"
	sqlitemigrate "github.com/louisbranch/game-reviews/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/game-reviews/internal/igdb/cache/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists fetched IGDB records in SQLite. The igdb_cache table has no
// uniqueness constraint, so duplicate rows for one (endpoint, id) pair are
// tolerated; reads resolve them deterministically to the most recent row.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite cache store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads the cached payload for (endpoint, id), preferring the most recent
// row when duplicates exist.
func (s *Store) Get(ctx context.Context, endpoint string, id int64) ([]byte, bool, error) {
	if s == nil || s.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, false, fmt.Errorf("endpoint is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT value FROM igdb_cache
		 WHERE endpoint = ? AND igdb_id = ?
		 ORDER BY rowid DESC LIMIT 1`,
		endpoint,
		id,
	)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	return []byte(value), true, nil
}

// GetMany loads cached payloads for the requested ids under one endpoint.
// Absent ids are omitted from the result.
func (s *Store) GetMany(ctx context.Context, endpoint string, ids []int64) (map[int64][]byte, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	result := make(map[int64][]byte)
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(ids)+1)
	args = append(args, endpoint)
	for _, id := range ids {
		args = append(args, id)
	}

	// Rows scan in rowid order, so later duplicates overwrite earlier ones
	// and the most recent write wins.
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT igdb_id, value FROM igdb_cache
		 WHERE endpoint = ? AND igdb_id IN (`+placeholders+`)
		 ORDER BY rowid`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		result[id] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return result, nil
}

// Put stores one payload under (endpoint, id).
func (s *Store) Put(ctx context.Context, endpoint string, id int64, payload []byte) error {
	return s.PutMany(ctx, endpoint, []cache.Entry{{ID: id, Payload: payload}})
}

// PutMany stores all entries in one transaction; a failed insert rolls the
// whole batch back so readers never observe a partial write.
func (s *Store) PutMany(ctx context.Context, endpoint string, entries []cache.Entry) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}
	for _, entry := range entries {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO igdb_cache (igdb_id, endpoint, value) VALUES (?, ?, ?)`,
			entry.ID,
			endpoint,
			string(entry.Payload),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert cache entry %d: %w", entry.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache write: %w", err)
	}
	return nil
}
