package common

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/caching"
	"github.com/dtnitsch/codehub/pkg/dataset"
	"github.com/dtnitsch/codehub/pkg/db"
	"github.com/dtnitsch/codehub/pkg/fetcher"
	"github.com/dtnitsch/codehub/pkg/notify"
	"github.com/dtnitsch/codehub/pkg/records"
	"github.com/urfave/cli/v2"
)

// DefaultFileCacheDir is used by the file backend when cache.path still
// points at the SQLite default.
const DefaultFileCacheDir = "codehub-cache"

// Runtime is everything a command needs to run the pipeline.
type Runtime struct {
	Config  *models.Config
	Logger  *slog.Logger
	Cache   caching.Store
	DB      *db.DB // nil unless the sqlite backend is in use
	Manager *dataset.Manager

	closers []io.Closer
}

func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config and applies flag overrides on top.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("cache") {
		cfg.Cache.Backend = c.String("cache")
	}
	if c.IsSet("cache-path") {
		cfg.Cache.Path = c.String("cache-path")
	}
	if c.IsSet("pages") {
		cfg.API.Pages = c.Int("pages")
	}
	if c.IsSet("concurrency") {
		cfg.API.Concurrency = c.Int("concurrency")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Setup loads config, opens the cache backend and builds the data manager.
// Callers must Close the runtime.
func Setup(c *cli.Context) (*Runtime, error) {
	logger := NewLogger(c)

	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger}

	if err := rt.openCache(c.Context); err != nil {
		return nil, err
	}

	var notifiers []records.Notifier
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kn := notify.NewKafkaNotifier(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		notifiers = append(notifiers, kn)
		rt.closers = append(rt.closers, kn)
		logger.Info("Kafka notifications enabled", "brokers", cfg.Notify.KafkaBrokers, "topic", cfg.Notify.KafkaTopic)
	}

	f := fetcher.NewFetcher(
		fetcher.WithRateLimit(cfg.API.RateLimit),
		fetcher.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
		fetcher.WithUserAgent(cfg.API.UserAgent),
	)

	var opts []dataset.Option
	if rt.DB != nil {
		opts = append(opts, dataset.WithAccessRecorder(rt.DB))
	}

	store := records.NewStore(logger, notifiers...)
	rt.Manager = dataset.NewManager(dataset.ConfigFrom(cfg.API), f, rt.Cache, store, logger, opts...)
	return rt, nil
}

func (rt *Runtime) openCache(ctx context.Context) error {
	cfg := rt.Config.Cache

	ttl, err := parseTTL(cfg.TTL)
	if err != nil {
		return err
	}

	switch cfg.Backend {
	case "sqlite":
		database, err := db.Open(cfg.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		rt.DB = database
		rt.Cache = database
		rt.closers = append(rt.closers, database)
	case "file":
		path := cfg.Path
		if path == models.DefaultCachePath {
			path = DefaultFileCacheDir
		}
		cache, err := caching.NewCache(path, ttl)
		if err != nil {
			return err
		}
		rt.Cache = cache
	case "memory":
		rt.Cache = caching.NewMemory(0)
	case "redis":
		rc, err := caching.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.Prefix, ttl)
		if err != nil {
			return err
		}
		rt.Cache = rc
		rt.closers = append(rt.closers, rc)
	default:
		return fmt.Errorf("unknown cache backend: %q", cfg.Backend)
	}

	rt.Logger.Debug("cache backend ready", "backend", cfg.Backend)
	return nil
}

// Close releases the cache backend and notifiers.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.Logger.Warn("failed to close resource", "error", err)
		}
	}
}

// Context derives the command context, bounded by --timeout when set.
func Context(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := c.Duration("timeout"); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q: %w", s, err)
	}
	return ttl, nil
}
