package main

import (
	"context"
	"time"

	"adservice/internal/config"
	"adservice/internal/database"
	"adservice/internal/domain"
	"adservice/internal/logging"
	"adservice/internal/repository"

	"github.com/rs/zerolog/log"
)

type seedAd struct {
	name     string
	file     string
	duration int
	weight   int
	status   domain.AdStatus
	days     int // campaign length from today, 0 = open-ended
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}

	log.Info().Msg("running migrations")
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	// Cleanup old data (impressions first, they reference ads)
	log.Info().Msg("cleaning old data")
	db.Exec("DELETE FROM ad_impressions")
	db.Exec("DELETE FROM ads")
	db.Exec("DELETE FROM advertisers")

	ctx := context.Background()
	advertisers := repository.NewAdvertiserRepository(db)
	ads := repository.NewAdRepository(db)

	catalog := map[string][]seedAd{
		"Northwind Coffee": {
			{name: "Morning Roast", file: "morning_roast.mp4", duration: 30, weight: 3, status: domain.AdActive},
			{name: "Cold Brew Summer", file: "cold_brew.webm", duration: 15, weight: 1, status: domain.AdActive, days: 30},
		},
		"Skyline Telecom": {
			{name: "Fiber Launch", file: "fiber_launch.mp4", duration: 20, weight: 2, status: domain.AdActive},
			{name: "Roaming Promo", file: "roaming.mp4", duration: 25, weight: 1, status: domain.AdInactive},
		},
		"City Transit": {
			{name: "Night Bus", file: "night_bus.ogg", duration: 10, weight: 0, status: domain.AdActive},
		},
	}

	today := domain.Today(time.Now())
	created := 0
	for advName, items := range catalog {
		adv := &domain.Advertiser{Name: advName}
		if err := advertisers.Create(ctx, adv); err != nil {
			log.Fatal().Err(err).Str("advertiser", advName).Msg("create advertiser failed")
		}

		for _, s := range items {
			ad := &domain.Ad{
				Name:            s.name,
				AdvertiserID:    &adv.ID,
				VideoURL:        "/ads/videos/" + s.file,
				DurationSeconds: s.duration,
				Weight:          s.weight,
				Status:          s.status,
			}
			if s.days > 0 {
				end := today.AddDate(0, 0, s.days)
				ad.StartDate, ad.EndDate = &today, &end
			}
			if err := ads.Create(ctx, ad); err != nil {
				log.Fatal().Err(err).Str("ad", s.name).Msg("create ad failed")
			}
			created++
		}
	}

	log.Info().Int("advertisers", len(catalog)).Int("ads", created).Msg("seed completed")
}
