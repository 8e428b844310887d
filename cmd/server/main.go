package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reachmesh-bknd/internal/cache"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/database"
	"reachmesh-bknd/internal/logger"
	"reachmesh-bknd/internal/routes"
	"reachmesh-bknd/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(startCtx, db); err != nil {
		logr.Fatal("failed to ensure schema", zap.Error(err))
	}

	// Redis is optional: without it the catalog is read from Postgres.
	rdb := cache.NewRedisClient(cfg)
	c := cache.New(rdb, "reachmesh", cfg.CacheTTL)
	if err := c.Ping(startCtx); err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		_ = rdb.Close()
		c = nil
	} else {
		defer rdb.Close()
	}

	var uploader storage.ImageUploader
	if cfg.S3Bucket != "" {
		s3u, err := storage.NewS3Uploader(startCtx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			logr.Warn("s3 unavailable, uploads disabled", zap.Error(err))
		} else {
			uploader = s3u
		}
	} else {
		logr.Info("S3_BUCKET not set, uploads disabled")
	}
	cancelStart()

	r := routes.NewRouter(db, c, uploader, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
