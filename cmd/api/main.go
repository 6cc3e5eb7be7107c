// Package main is the entrypoint for the MiroTrak API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mirotrak/mirotrak/internal/cache"
	"github.com/mirotrak/mirotrak/internal/config"
	"github.com/mirotrak/mirotrak/internal/handler"
	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/middleware"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/server"
	"github.com/mirotrak/mirotrak/internal/service"
	"github.com/mirotrak/mirotrak/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		return err
	}
	logger.Info("connected to database")

	// Interfaces stay nil when the optional dependency is absent.
	var (
		limiter     middleware.Limiter
		redisHealth handler.HealthChecker
		redisClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		redisClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			repo.Close()
			logger.Error("failed to connect to Redis",
				slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
			)
			return err
		}
		limiter = redisClient
		redisHealth = redisClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	var photoStorage service.ObjectStorage
	storageCfg := storage.Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PublicURL: cfg.S3.PublicURL,
	}
	if storageCfg.Enabled() {
		s3, err := storage.NewS3(ctx, storageCfg)
		if err != nil {
			repo.Close()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			logger.Error("failed to configure object storage", "error", err)
			return err
		}
		photoStorage = s3
		logger.Info("object storage configured", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)
	} else {
		logger.Warn("S3_BUCKET not set, photo uploads disabled")
	}

	recorder := metrics.NewInMemory()
	h := newHandlers(repo, photoStorage, cfg, recorder, logger)
	h.health = handler.NewHealthHandler(repo, redisHealth, logger)

	router := newRouter(h, routerConfig{
		Logger:         logger,
		IsDevelopment:  cfg.IsDevelopment(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodySize:    cfg.MaxRequestBodySize,
		AdminKeyHash:   cfg.AdminKeyHash,
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: limiter,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if redisClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"admin_auth", cfg.AdminKeyHash != "",
		"rate_limit", cfg.RateLimitEnabled && limiter != nil,
		"photo_storage", photoStorage != nil,
	)

	return srv.Run(ctx)
}
