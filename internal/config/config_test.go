package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLimit != 20 {
		t.Fatalf("default limit: %d", cfg.DefaultLimit)
	}
	if cfg.SuccessRateMode != "precomputed" || cfg.RefreshInterval != 5*time.Minute {
		t.Fatalf("aggregate defaults: %q %v", cfg.SuccessRateMode, cfg.RefreshInterval)
	}
	if len(cfg.Categories) != len(DefaultCategories) {
		t.Fatalf("categories: %v", cfg.Categories)
	}
	if cfg.StrictMode {
		t.Fatalf("strict mode must be opt-in")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CATALOG_CATEGORIES", "jewelry, tech ,,books")
	t.Setenv("SUCCESS_RATE_MODE", "on_read")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("CATALOG_STRICT_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver: %q", cfg.DBDriver)
	}
	if len(cfg.Categories) != 3 || cfg.Categories[1] != "tech" {
		t.Fatalf("categories: %v", cfg.Categories)
	}
	if cfg.SuccessRateMode != "on_read" || cfg.RequestTimeout != 2*time.Second || !cfg.StrictMode {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for unknown driver")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `categories: [jewelry, books]
cors:
  origins: ["https://giftgenius.app"]
  origin_patterns: ['^https://.*\.vercel\.app$']
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CATALOG_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1] != "books" {
		t.Fatalf("categories: %v", cfg.Categories)
	}
	if len(cfg.CORSOrigins) != 1 || len(cfg.CORSOriginPatterns) != 1 {
		t.Fatalf("cors: %v %v", cfg.CORSOrigins, cfg.CORSOriginPatterns)
	}
}
