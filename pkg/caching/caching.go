// Package caching holds the key-value stores the pipeline persists snapshots
// into, and the versioned codec for the values.
package caching

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

var (
	// ErrQuotaExceeded is returned by Set when the store is full.
	ErrQuotaExceeded = errors.New("cache quota exceeded")
	// ErrInvalidEntry is returned by Decode for corrupted or stale entries.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is a persistent key-value cache. Get reports a miss with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Cache provides a simple file-based cache with an optional TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist. A zero ttl never expires.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// key maps a cache key to a filename. Simple keys are used as-is, anything
// else is hashed.
func (c *Cache) key(key string) string {
	if safeKey.MatchString(key) {
		return key
	}
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash)
}

// Get retrieves an item from the cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	filePath := filepath.Join(c.path, c.key(key))

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat cache entry: %w", err)
	}

	// Check if expired
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false, nil // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return data, true, nil
}

// Set adds an item to the cache.
func (c *Cache) Set(_ context.Context, key string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(key))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Delete removes an item. Deleting a missing key is not an error.
func (c *Cache) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(c.path, c.key(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Keys lists the stored filenames, which equal the keys for simple keys.
func (c *Cache) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}
