package db

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dtnitsch/codehub/internal/common"
	"github.com/dtnitsch/codehub/pkg/caching"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

// Entry describes one cached value.
type Entry struct {
	Key       string    `json:"key" yaml:"key"`
	Kind      string    `json:"kind" yaml:"kind"`
	Version   int       `json:"version" yaml:"version"`
	SavedAt   time.Time `json:"saved_at,omitempty" yaml:"saved_at,omitempty"`
	SizeBytes int       `json:"size_bytes" yaml:"size_bytes"`
	Valid     bool      `json:"valid" yaml:"valid"`
}

// Listing is the output of `cache list`.
type Listing struct {
	Backend       string  `json:"backend" yaml:"backend"`
	Entries       []Entry `json:"entries" yaml:"entries"`
	FailedFetches int     `json:"failed_fetches_24h,omitempty" yaml:"failed_fetches_24h,omitempty"`
}

// CacheListAction lists cache entries with their envelope metadata.
func CacheListAction(c *cli.Context) error {
	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := common.Context(c)
	defer cancel()

	lister, ok := rt.Cache.(caching.Lister)
	if !ok {
		return fmt.Errorf("cache backend %q cannot list keys", rt.Config.Cache.Backend)
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}

	listing := Listing{Backend: rt.Config.Cache.Backend, Entries: []Entry{}}
	for _, key := range keys {
		data, found, err := rt.Cache.Get(ctx, key)
		if err != nil {
			rt.Logger.Warn("failed to read cache entry", "key", key, "error", err)
			continue
		}
		if !found {
			continue
		}

		entry := Entry{Key: key, SizeBytes: len(data)}
		if env, err := caching.Peek(data); err == nil {
			entry.Kind = string(env.Kind)
			entry.Version = env.Version
			entry.SavedAt = env.SavedAt
			entry.Valid = env.Version == caching.SchemaVersion
		}
		listing.Entries = append(listing.Entries, entry)
	}

	if rt.DB != nil {
		n, err := rt.DB.CountFailedAccesses(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			rt.Logger.Warn("failed to read access log", "error", err)
		}
		listing.FailedFetches = n
	}

	return common.Render(c, listing, func(w io.Writer) error {
		printListing(w, listing)
		return nil
	})
}

// CacheClearAction deletes the named keys, or every key when none are given.
func CacheClearAction(c *cli.Context) error {
	rt, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := common.Context(c)
	defer cancel()

	keys := c.Args().Slice()
	if len(keys) == 0 {
		lister, ok := rt.Cache.(caching.Lister)
		if !ok {
			return fmt.Errorf("cache backend %q cannot list keys", rt.Config.Cache.Backend)
		}
		if keys, err = lister.Keys(ctx); err != nil {
			return fmt.Errorf("failed to list cache keys: %w", err)
		}
	}

	for _, key := range keys {
		if err := rt.Cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
		rt.Logger.Info("Cache entry deleted", "key", key)
	}

	fmt.Fprintf(c.App.Writer, "Deleted %s cache entries\n", common.Count(len(keys)))
	return nil
}

func printListing(w io.Writer, listing Listing) {
	if len(listing.Entries) == 0 {
		fmt.Fprintf(w, "No cache entries (%s backend)\n", listing.Backend)
		return
	}

	fmt.Fprintf(w, "%-12s %-10s %-10s %-18s %s\n", "Key", "Kind", "Size", "Saved", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	var total uint64
	for _, e := range listing.Entries {
		saved := "-"
		if !e.SavedAt.IsZero() {
			saved = humanize.Time(e.SavedAt)
		}
		status := "ok"
		if !e.Valid {
			status = "invalid"
		}
		kind := e.Kind
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(w, "%-12s %-10s %-10s %-18s %s\n", e.Key, kind, humanize.Bytes(uint64(e.SizeBytes)), saved, status)
		total += uint64(e.SizeBytes)
	}

	fmt.Fprintf(w, "\nTotal: %s entries, %s (%s backend)\n", common.Count(len(listing.Entries)), humanize.Bytes(total), listing.Backend)
	if listing.FailedFetches > 0 {
		fmt.Fprintf(w, "Failed fetches in the last 24h: %s\n", common.Count(listing.FailedFetches))
	}
}
