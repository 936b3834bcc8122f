package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"InspectAPI/internal/cache"
	"InspectAPI/internal/config"
	"InspectAPI/internal/db"
	"InspectAPI/internal/entity"
	"InspectAPI/internal/handler"
	"InspectAPI/internal/logger"
	"InspectAPI/internal/model"
	"InspectAPI/internal/router"
	"InspectAPI/internal/storage"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	ctx := context.Background()

	// PostgreSQL + миграции схемы
	if err := db.InitPostgres(ctx, cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()
	if err := db.RunMigrations(cfg.MigrationsDir, cfg.PostgresDSN); err != nil {
		logger.Error("migrations_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("postgres_ready", nil)

	// Реестр моделей и локаль досортировки
	if err := entity.Register(); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	model.SetLocale(cfg.Locale)
	logger.Info("models_initialized", map[string]any{"count": len(model.Registry)})

	// Redis-кэш страниц: без Redis или политики сервис живёт, просто без кэша
	db.InitRedis(cfg.RedisAddr)
	if err := db.PingRedis(ctx); err != nil {
		logger.Warn("redis_unavailable", map[string]any{"error": err.Error()})
	} else {
		policy, err := cache.LoadPolicy(cfg.CacheConfig)
		if err != nil {
			logger.Warn("cache_policy_unavailable", map[string]any{"error": err.Error()})
		} else {
			handler.PageCache = cache.New(db.RDB, policy)
			logger.Info("page_cache_enabled", nil)
		}
	}

	// Хранилище снимков: подписанные ссылки опциональны
	if cfg.S3.Bucket != "" {
		signer, err := storage.NewS3(ctx, cfg.S3.Bucket, cfg.S3.Prefix,
			time.Duration(cfg.S3.URLTTLSec)*time.Second)
		if err != nil {
			logger.Warn("storage_unavailable", map[string]any{"error": err.Error()})
		} else {
			entity.SetSigner(signer)
			logger.Info("storage_enabled", map[string]any{"bucket": cfg.S3.Bucket})
		}
	}

	router.InitRoutes(cfg)
	logger.Info("server_start", map[string]any{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
