package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adservice/internal/app"
	"adservice/internal/cache"
	"adservice/internal/config"
	"adservice/internal/database"
	"adservice/internal/logging"
	"adservice/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	// Selection caching is advisory; run without it rather than refuse to start.
	var rdb *redis.Client
	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.RedisTimeout)
	rdb, err = cache.Connect(pingCtx, cfg.RedisURL, cfg.RedisTimeout)
	cancel()
	if err != nil {
		log.Warn().Err(err).Str("redis", cfg.RedisURL).Msg("redis unavailable, selection cache disabled")
		rdb = nil
	}

	a := app.New(cfg, db, rdb)
	a.Limiter.Start()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("ad service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	a.Shutdown()

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("stopped")
}
