package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Env         string `validate:"required"`
	Port        string `validate:"required,numeric"`
	DBDriver    string `validate:"oneof=postgres sqlite memory"`
	DatabaseURL string
	SQLitePath  string
	SeedOnStart bool

	Categories      []string      `validate:"min=1,dive,required,max=50"`
	DefaultLimit    int           `validate:"min=1,max=100"`
	StrictMode      bool
	SuccessRateMode string        `validate:"oneof=precomputed on_read"`
	RefreshInterval time.Duration `validate:"min=1s"`
	RetentionDays   int           `validate:"min=0"`
	RequestTimeout  time.Duration `validate:"min=1ms"`

	QueryCacheSize int           `validate:"min=1"`
	QueryCacheTTL  time.Duration `validate:"min=0"`
	RedisAddr      string

	CORSOrigins        []string
	CORSOriginPatterns []string
}

// CatalogFile 可选的 YAML 目录配置，覆盖环境变量中的同名项
type CatalogFile struct {
	Categories []string `yaml:"categories"`
	CORS       struct {
		Origins        []string `yaml:"origins"`
		OriginPatterns []string `yaml:"origin_patterns"`
	} `yaml:"cors"`
}

// DefaultCategories 默认分类白名单
var DefaultCategories = []string{"jewelry", "tech", "home", "fashion", "beauty", "food", "experiences", "unique"}

// Load 加载配置
func Load() (*Config, error) {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "giftgenius")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := getEnv("DATABASE_URL", fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL))

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "5007"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: dbURL,
		SQLitePath:  getEnv("SQLITE_PATH", "giftgenius.db"),
		SeedOnStart: getBool("SEED_ON_START", true),

		Categories:      getList("CATALOG_CATEGORIES", DefaultCategories),
		DefaultLimit:    getInt("CATALOG_DEFAULT_LIMIT", 20),
		StrictMode:      getBool("CATALOG_STRICT_MODE", false),
		SuccessRateMode: strings.ToLower(getEnv("SUCCESS_RATE_MODE", "precomputed")),
		RefreshInterval: getDuration("SUCCESS_RATE_REFRESH_INTERVAL", 5*time.Minute),
		RetentionDays:   getInt("ANALYTICS_RETENTION_DAYS", 0),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 5*time.Second),

		QueryCacheSize: getInt("QUERY_CACHE_SIZE", 1000),
		QueryCacheTTL:  getDuration("QUERY_CACHE_TTL", time.Minute),
		RedisAddr:      getEnv("REDIS_ADDR", ""),

		CORSOrigins:        getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		CORSOriginPatterns: getList("CORS_ORIGIN_PATTERNS", nil),
	}

	if path := getEnv("CATALOG_CONFIG", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

// IsProduction 是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取目录配置失败: %w", err)
	}
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("解析目录配置失败: %w", err)
	}
	if len(file.Categories) > 0 {
		c.Categories = file.Categories
	}
	if len(file.CORS.Origins) > 0 {
		c.CORSOrigins = file.CORS.Origins
	}
	if len(file.CORS.OriginPatterns) > 0 {
		c.CORSOriginPatterns = file.CORS.OriginPatterns
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return v
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
