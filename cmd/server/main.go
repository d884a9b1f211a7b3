package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/giftgenius/internal/catalog"
	"github.com/user/giftgenius/internal/config"
	"github.com/user/giftgenius/internal/handler"
	"github.com/user/giftgenius/internal/logger"
	"github.com/user/giftgenius/internal/middleware"
	"github.com/user/giftgenius/internal/repository"
	"github.com/user/giftgenius/internal/router"
	"github.com/user/giftgenius/internal/service"
	"github.com/user/giftgenius/internal/utils"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	logg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer logg.Sync()

	// 初始化存储
	repos, err := repository.Open(cfg)
	if err != nil {
		logg.Fatal("存储初始化失败", "driver", cfg.DBDriver, "error", err)
	}
	defer repos.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedOnStart {
		n, err := repository.Seed(ctx, repos)
		if err != nil {
			logg.Fatal("写入初始数据失败", "error", err)
		}
		if n > 0 {
			logg.Info("已写入初始目录数据", "gifts", n)
		}
	}

	// 初始化缓存
	utils.InitCache(service.CategoriesCacheTTL)
	var resultCache service.ResultCache
	if cfg.RedisAddr != "" {
		rc, err := utils.NewRedisCache(cfg.RedisAddr, "giftgenius:query:", cfg.QueryCacheTTL)
		if err != nil {
			logg.Fatal("Redis 连接失败", "addr", cfg.RedisAddr, "error", err)
		}
		defer rc.Close()
		resultCache = service.NewRedisResultCache(rc, logg)
	} else {
		resultCache = service.NewLocalResultCache(cfg.QueryCacheSize, cfg.QueryCacheTTL)
	}

	// 初始化服务
	catalogSvc := service.NewCatalogService(repos, resultCache, service.CatalogOptions{
		Categories:   cfg.Categories,
		DefaultLimit: cfg.DefaultLimit,
		Strict:       cfg.StrictMode,
		QueryTimeout: cfg.RequestTimeout,
	}, logg)
	analyticsSvc := service.NewAnalyticsService(repos, logg)

	// 启动定时维护任务（成功率重算 + 埋点清理）
	mode, _ := catalog.ParseAggregateMode(cfg.SuccessRateMode)
	statsSvc := service.NewStatsService(repos, catalogSvc, service.StatsOptions{
		Mode:          mode,
		Interval:      cfg.RefreshInterval,
		RetentionDays: cfg.RetentionDays,
	}, logg)
	statsSvc.Start(ctx)
	defer statsSvc.Stop()

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	corsHandler, err := middleware.CORS(cfg.CORSOrigins, cfg.CORSOriginPatterns)
	if err != nil {
		logg.Fatal("CORS 配置无效", "error", err)
	}

	// 中间件：日志、指标、panic 恢复由 NewEngine 按序挂载
	r := router.NewEngine(logg, metrics,
		corsHandler,
		gzip.Gzip(gzip.DefaultCompression),
		middleware.Timeout(cfg.RequestTimeout),
	)

	h := handler.NewHandler(repos, catalogSvc, analyticsSvc, logg)
	router.RegisterRoutes(r, h, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 5*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logg.Info("服务器启动", "addr", "http://localhost:"+cfg.Port, "driver", cfg.DBDriver, "success_rate_mode", mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	<-ctx.Done()
	logg.Info("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("服务器强制关闭", "error", err)
	}

	logg.Info("服务器已退出")
}
