package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/config"
	"github.com/user/giftgenius/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open 按配置打开存储并完成迁移
func Open(cfg *config.Config) (*Repositories, error) {
	mode, err := catalog.ParseAggregateMode(cfg.SuccessRateMode)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	switch cfg.DBDriver {
	case "memory":
		return NewMemoryRepositories(mode), nil
	case "sqlite":
		db, err = InitSQLite(cfg.SQLitePath, gormConfig(cfg))
	default:
		db, err = InitDB(cfg.DatabaseURL, gormConfig(cfg))
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return NewRepositories(db, mode)
}

// InitDB 初始化 Postgres 连接（lib/pq 连接池交给 gorm 使用）
func InitDB(databaseURL string, gcfg *gorm.Config) (*gorm.DB, error) {
	connector, err := pq.NewConnector(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法解析数据库地址: %w", err)
	}
	sqlDB := sql.OpenDB(connector)

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gcfg)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}
	return db, nil
}

// InitSQLite 初始化 SQLite 连接。SQLite 只允许单写，连接池限制为 1。
func InitSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("无法打开 SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("设置 busy_timeout 失败: %w", err)
	}
	return db, nil
}

// Migrate 自动迁移表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Gift{}, &model.Testimonial{}, &model.AnalyticsEvent{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// NewRepositories 基于 gorm 连接创建仓库集合
func NewRepositories(db *gorm.DB, mode catalog.AggregateMode) (*Repositories, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Gift:        NewGiftRepository(db, mode),
		Testimonial: NewTestimonialRepository(db),
		Analytics:   NewAnalyticsRepository(db),
		ping:        sqlDB.PingContext,
		close:       sqlDB.Close,
		begin: func(ctx context.Context, _ *Repositories, fn func(tx *Repositories) error) error {
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return fn(&Repositories{
					Gift:        NewGiftRepository(tx, mode),
					Testimonial: NewTestimonialRepository(tx),
					Analytics:   NewAnalyticsRepository(tx),
				})
			})
		},
	}, nil
}

func gormConfig(cfg *config.Config) *gorm.Config {
	level := gormLogger.Silent
	if cfg.Env == "development" {
		level = gormLogger.Warn
	}
	return &gorm.Config{Logger: gormLogger.Default.LogMode(level)}
}
