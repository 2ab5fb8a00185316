// Package dataset fetches submission pages and the compiler image mapping,
// caching each, and aggregates all pages into statistics.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/caching"
	"github.com/dtnitsch/codehub/pkg/fetcher"
	"github.com/dtnitsch/codehub/pkg/records"
)

const (
	ImageKey    = "imageKey"
	SnapshotKey = "dbKEY"

	resourceSubmissions = "submissions"
	resourceImages      = "images"
)

// PageKey is the cache key for one submissions page.
func PageKey(page int) string {
	return "pg_" + strconv.Itoa(page)
}

// Source performs the remote GET and JSON decode. *fetcher.Fetcher satisfies it.
type Source interface {
	GetJSON(ctx context.Context, url string, v interface{}) error
}

// AccessRecorder receives every network attempt. *db.DB satisfies it.
type AccessRecorder interface {
	RecordAccess(ctx context.Context, resource string, page int, success bool, errorType string, duration time.Duration) error
}

// Config holds the remote endpoints and fan-out settings.
type Config struct {
	SubmissionsURL string
	ImagesURL      string
	Pages          int
	Concurrency    int // 0 = all pages at once
}

// ConfigFrom adapts the API section of the runtime config.
func ConfigFrom(api models.APIConfig) Config {
	return Config{
		SubmissionsURL: api.SubmissionsURL,
		ImagesURL:      api.ImagesURL,
		Pages:          api.Pages,
		Concurrency:    api.Concurrency,
	}
}

// Manager is the data manager behind the presentation layer.
type Manager struct {
	cfg      Config
	source   Source
	cache    caching.Store
	store    *records.Store
	recorder AccessRecorder
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

type Option func(*Manager)

func WithAccessRecorder(r AccessRecorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

func NewManager(cfg Config, source Source, cache caching.Store, store *records.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:    cfg,
		source: source,
		cache:  cache,
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the record store the manager writes into.
func (m *Manager) Store() *records.Store {
	return m.store
}

// FetchPage returns one page of submissions, from cache when a valid entry
// exists, otherwise from the remote API.
func (m *Manager) FetchPage(ctx context.Context, page int) ([]models.Submission, error) {
	key := PageKey(page)

	var subs []models.Submission
	if m.loadCached(ctx, key, caching.KindPage, &subs) {
		return subs, nil
	}

	pageURL, err := m.pageURL(page)
	if err != nil {
		return nil, &FetchError{Resource: resourceSubmissions, Page: page, Err: err}
	}

	var body models.SubmissionPage
	if err := m.fetch(ctx, resourceSubmissions, page, pageURL, &body); err != nil {
		return nil, &FetchError{Resource: resourceSubmissions, Page: page, Err: err}
	}
	if body.Websites == nil {
		return nil, &FetchError{Resource: resourceSubmissions, Page: page, Err: ErrMalformedPage}
	}

	m.persist(ctx, key, caching.KindPage, body.Websites)
	return body.Websites, nil
}

// FetchImageMapping returns the language icon mapping and installs it in
// the record store.
func (m *Manager) FetchImageMapping(ctx context.Context) (models.ImageMapping, error) {
	var mapping models.ImageMapping
	if !m.loadCached(ctx, ImageKey, caching.KindImages, &mapping) {
		var images []models.CompilerImage
		if err := m.fetch(ctx, resourceImages, 0, m.cfg.ImagesURL, &images); err != nil {
			return nil, &FetchError{Resource: resourceImages, Err: err}
		}
		mapping = models.NewImageMapping(images)
		m.persist(ctx, ImageKey, caching.KindImages, mapping)
	}

	m.store.SetImageMapping(ctx, mapping)
	m.logger.Info("Image mapping loaded", "languages", len(mapping))
	return m.store.ImageMapping(), nil
}

func (m *Manager) pageURL(page int) (string, error) {
	u, err := url.Parse(m.cfg.SubmissionsURL)
	if err != nil {
		return "", fmt.Errorf("invalid submissions URL: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetch performs one network request and records the attempt.
func (m *Manager) fetch(ctx context.Context, resource string, page int, rawURL string, v interface{}) error {
	start := time.Now()
	err := m.source.GetJSON(ctx, rawURL, v)

	if m.recorder != nil {
		if recErr := m.recorder.RecordAccess(ctx, resource, page, err == nil, fetcher.ErrorType(err), time.Since(start)); recErr != nil {
			m.logger.Debug("failed to record access", "resource", resource, "page", page, "error", recErr)
		}
	}
	if err != nil {
		m.logger.Error("Fetch failed", "resource", resource, "page", page, "error", err)
	}
	return err
}

// loadCached decodes the entry at key into v. Missing, unreadable and
// invalid entries all report false so the caller fetches fresh data.
func (m *Manager) loadCached(ctx context.Context, key string, kind caching.Kind, v interface{}) bool {
	data, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.Warn("cache read failed, fetching instead", "key", key, "error", err)
		return false
	}
	if !ok {
		m.logger.Debug("cache miss", "key", key)
		return false
	}
	if err := caching.Decode(data, kind, v); err != nil {
		m.logger.Warn("discarding invalid cache entry", "key", key, "error", err)
		return false
	}
	m.logger.Debug("cache hit", "key", key)
	return true
}

// persist is best-effort: failures are logged and swallowed.
func (m *Manager) persist(ctx context.Context, key string, kind caching.Kind, v interface{}) {
	data, err := caching.Encode(kind, v)
	if err == nil {
		err = m.cache.Set(ctx, key, data)
	}
	if err != nil {
		cwErr := &CacheWriteError{Key: key, Err: err}
		m.logger.Warn(cwErr.Error(), "key", key, "quota_exceeded", errors.Is(err, caching.ErrQuotaExceeded))
	}
}
