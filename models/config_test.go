package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.API.Pages != DefaultPageCount {
		t.Errorf("pages = %d, want %d", cfg.API.Pages, DefaultPageCount)
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("backend = %q, want %q", cfg.Cache.Backend, DefaultCacheBackend)
	}
	if cfg.View.PageSize != DefaultPageSize {
		t.Errorf("page_size = %d, want %d", cfg.View.PageSize, DefaultPageSize)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  submissions_url: http://localhost:9000/submissions
  images_url: http://localhost:9000/compiler_images
  pages: 3
  concurrency: 2
cache:
  backend: memory
view:
  page_size: 10
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.API.Pages != 3 {
		t.Errorf("pages = %d, want 3", cfg.API.Pages)
	}
	if cfg.API.Concurrency != 2 {
		t.Errorf("concurrency = %d, want 2", cfg.API.Concurrency)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.Cache.Backend)
	}
	// Unset fields keep their defaults
	if cfg.Cache.Prefix != "codehub:" {
		t.Errorf("prefix = %q, want default", cfg.Cache.Prefix)
	}
	if cfg.View.PageSize != 10 {
		t.Errorf("page_size = %d, want 10", cfg.View.PageSize)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CODEHUB_PAGES", "5")
	t.Setenv("CODEHUB_CACHE_BACKEND", "file")
	t.Setenv("CODEHUB_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.API.Pages != 5 {
		t.Errorf("pages = %d, want 5", cfg.API.Pages)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("backend = %q, want file", cfg.Cache.Backend)
	}
	if len(cfg.Notify.KafkaBrokers) != 2 || cfg.Notify.KafkaBrokers[1] != "k2:9092" {
		t.Errorf("kafka brokers = %v, want [k1:9092 k2:9092]", cfg.Notify.KafkaBrokers)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad pages", map[string]string{"CODEHUB_PAGES": "many"}},
		{"zero pages", map[string]string{"CODEHUB_PAGES": "0"}},
		{"unknown backend", map[string]string{"CODEHUB_CACHE_BACKEND": "floppy"}},
		{"redis without addr", map[string]string{"CODEHUB_CACHE_BACKEND": "redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(""); err == nil {
				t.Error("LoadConfig() succeeded, want error")
			}
		})
	}
}

func TestLoadConfig_ZeroPageSizeDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("view:\n  page_size: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.View.PageSize != DefaultPageSize {
		t.Errorf("page_size = %d, want %d", cfg.View.PageSize, DefaultPageSize)
	}
}

func TestValidate_DoesNotModify(t *testing.T) {
	cfg := DefaultConfig()
	cfg.View.PageSize = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with page_size 0, want error")
	}
	if cfg.View.PageSize != 0 {
		t.Errorf("Validate() changed page_size to %d", cfg.View.PageSize)
	}

	cfg.View.PageSize = -5
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with negative page_size, want error")
	}
}
