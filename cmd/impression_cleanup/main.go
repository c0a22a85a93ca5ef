package main

import (
	"context"
	"time"

	"adservice/internal/config"
	"adservice/internal/database"
	"adservice/internal/logging"
	"adservice/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	cutoff := time.Now().UTC().Add(-cfg.ImpressionRetention)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := repository.NewImpressionRepository(db).DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Fatal().Err(err).Msg("impression cleanup failed")
	}

	log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("impression cleanup completed")
}
