package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Get returns the cached value for key. A missing key is a miss, not an error.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := db.QueryRowContext(ctx, "SELECT value FROM cache_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, size_bytes, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at
	`, key, value, len(value))
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// Keys lists every cached key in lexical order.
func (db *DB) Keys(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT key FROM cache_entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// AccessRecord is one row of fetch_accesses.
type AccessRecord struct {
	AccessID   int64
	Resource   string
	Page       int
	AccessedAt time.Time
	Success    bool
	ErrorType  string
	DurationMs int64
}

// RecordAccess records a fetch attempt in fetch_accesses.
func (db *DB) RecordAccess(ctx context.Context, resource string, page int, success bool, errorType string, duration time.Duration) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fetch_accesses (resource, page, success, error_type, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, resource, page, success, errorType, duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// GetLastAccess returns the most recent attempt for resource/page, or nil.
func (db *DB) GetLastAccess(ctx context.Context, resource string, page int) (*AccessRecord, error) {
	var r AccessRecord
	var errorType sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT access_id, resource, page, accessed_at, success, error_type, duration_ms
		FROM fetch_accesses
		WHERE resource = ? AND page = ?
		ORDER BY access_id DESC
		LIMIT 1
	`, resource, page).Scan(&r.AccessID, &r.Resource, &r.Page, &r.AccessedAt, &r.Success, &errorType, &r.DurationMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last access: %w", err)
	}
	r.ErrorType = errorType.String
	return &r, nil
}

// CountFailedAccesses counts failed attempts recorded since the given time.
func (db *DB) CountFailedAccesses(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM fetch_accesses
		WHERE success = 0 AND accessed_at >= ?
	`, since.UTC().Format("2006-01-02 15:04:05")).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed accesses: %w", err)
	}
	return n, nil
}
