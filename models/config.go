// Package models defines data structures for configuration and submission data.
package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSubmissionsURL = "http://hackerearth.0x10.info/api/ctz_coders?type=json&query=list_submissions"
	DefaultImagesURL      = "http://hackerearth.0x10.info/api/ctz_coders?type=json&query=list_compiler_image"
	DefaultPageCount      = 70
	DefaultCacheBackend   = "sqlite"
	DefaultCachePath      = "codehub.db"
	DefaultPageSize       = 50
)

// Config holds runtime configuration. Values come from config.yaml, then
// .env / CODEHUB_* environment variables, then CLI flags.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Cache  CacheConfig  `yaml:"cache"`
	Notify NotifyConfig `yaml:"notify"`
	View   ViewConfig   `yaml:"view"`
}

type APIConfig struct {
	SubmissionsURL string  `yaml:"submissions_url"`
	ImagesURL      string  `yaml:"images_url"`
	Pages          int     `yaml:"pages"`
	Concurrency    int     `yaml:"concurrency"`  // 0 = all pages at once
	RateLimit      float64 `yaml:"rate_limit"`   // requests per second, 0 = unlimited
	TimeoutSec     int     `yaml:"timeout_sec"`  // per request, 0 = none
	UserAgent      string  `yaml:"user_agent"`
}

type CacheConfig struct {
	Backend   string `yaml:"backend"` // sqlite, file, memory, redis
	Path      string `yaml:"path"`
	TTL       string `yaml:"ttl"` // file and redis backends; empty = no expiry
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	Prefix    string `yaml:"prefix"`
}

type NotifyConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

type ViewConfig struct {
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			SubmissionsURL: DefaultSubmissionsURL,
			ImagesURL:      DefaultImagesURL,
			Pages:          DefaultPageCount,
			UserAgent:      "codehub/1.0",
		},
		Cache: CacheConfig{
			Backend: DefaultCacheBackend,
			Path:    DefaultCachePath,
			Prefix:  "codehub:",
		},
		Notify: NotifyConfig{
			KafkaTopic: "codehub.data-updated",
		},
		View: ViewConfig{
			PageSize: DefaultPageSize,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.API.SubmissionsURL = getEnv("CODEHUB_API_SUBMISSIONS_URL", c.API.SubmissionsURL)
	c.API.ImagesURL = getEnv("CODEHUB_API_IMAGES_URL", c.API.ImagesURL)
	c.Cache.Backend = getEnv("CODEHUB_CACHE_BACKEND", c.Cache.Backend)
	c.Cache.Path = getEnv("CODEHUB_CACHE_PATH", c.Cache.Path)
	c.Cache.RedisAddr = getEnv("CODEHUB_REDIS_ADDR", c.Cache.RedisAddr)

	pages, err := getEnvInt("CODEHUB_PAGES", c.API.Pages)
	if err != nil {
		return err
	}
	c.API.Pages = pages

	if brokers := os.Getenv("CODEHUB_KAFKA_BROKERS"); brokers != "" {
		c.Notify.KafkaBrokers = splitList(brokers)
	}
	return nil
}

// applyDefaults fills optional fields a config file left at zero.
func (c *Config) applyDefaults() {
	if c.View.PageSize == 0 {
		c.View.PageSize = DefaultPageSize
	}
}

// Validate checks the values the pipeline cannot run without. It does not
// modify c.
func (c *Config) Validate() error {
	if c.API.Pages <= 0 {
		return fmt.Errorf("api.pages must be positive, got %d", c.API.Pages)
	}
	if c.API.Concurrency < 0 {
		return fmt.Errorf("api.concurrency must not be negative, got %d", c.API.Concurrency)
	}
	if c.API.SubmissionsURL == "" || c.API.ImagesURL == "" {
		return fmt.Errorf("api.submissions_url and api.images_url are required")
	}
	switch c.Cache.Backend {
	case "sqlite", "file", "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.View.PageSize <= 0 {
		return fmt.Errorf("view.page_size must be positive, got %d", c.View.PageSize)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
