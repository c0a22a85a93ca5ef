package selection

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"adservice/internal/domain"
	"adservice/internal/logging"
	"adservice/internal/pkg/mac"
	"adservice/internal/repository"
)

const (
	EventSelection = "selection"

	DefaultRecencyWindow = 24 * time.Hour

	cacheWriteTimeout = 2 * time.Second
	mediaPrefix       = "/ads/videos/"
)

type Service struct {
	catalog     AdCatalog
	history     ImpressionHistory
	advertisers AdvertiserDirectory
	cache       SelectionCache

	publisher EventPublisher
	observer  Observer
	rnd       Rand
	now       func() time.Time
	window    time.Duration

	wg sync.WaitGroup
}

func NewService(catalog AdCatalog, history ImpressionHistory, advertisers AdvertiserDirectory, cache SelectionCache, recencyWindow time.Duration) *Service {
	if recencyWindow <= 0 {
		recencyWindow = DefaultRecencyWindow
	}
	return &Service{
		catalog:     catalog,
		history:     history,
		advertisers: advertisers,
		cache:       cache,
		rnd:         globalRand{},
		now:         func() time.Time { return time.Now().UTC() },
		window:      recencyWindow,
	}
}

func (s *Service) SetPublisher(p EventPublisher) { s.publisher = p }
func (s *Service) SetObserver(o Observer)        { s.observer = o }

// SelectAd picks an ad for the device, preferring ads it has not seen within the recency window.
func (s *Service) SelectAd(ctx context.Context, deviceID, sessionID string) (*SelectedAd, error) {
	device, err := mac.Normalize(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: macAddress: %v", ErrValidation, err)
	}

	now := s.now()

	recent, err := s.history.GetRecentAdIds(ctx, device, now.Add(-s.window), now)
	if err != nil {
		return nil, err
	}

	ads, err := s.catalog.GetEligibleAds(ctx, now)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad.IsEligible(now) {
			eligible = append(eligible, ad)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoAdsAvailable
	}

	pool, fallback := candidatePool(eligible, recent)
	chosen := pickWeighted(pool, s.rnd)

	if sessionID != "" && s.cache != nil {
		s.rememberSelection(ctx, sessionID, chosen.ID)
	}

	selected := &SelectedAd{
		ID:              chosen.ID,
		Name:            chosen.Name,
		VideoURL:        mediaPrefix + path.Base(chosen.VideoURL),
		DurationSeconds: chosen.DurationSeconds,
		AdvertiserName:  s.advertiserName(ctx, chosen.AdvertiserID),
		Fallback:        fallback,
	}

	logging.Ctx(ctx).Debug().
		Int64("ad_id", chosen.ID).
		Str("mac", device).
		Int("eligible", len(eligible)).
		Int("recent", len(recent)).
		Bool("fallback", fallback).
		Msg("ad selected")

	if s.observer != nil {
		s.observer.ObserveSelection(fallback)
	}
	if s.publisher != nil {
		s.publisher.Publish(EventSelection, SelectionEvent{
			AdID:       chosen.ID,
			AdName:     chosen.Name,
			MACAddress: device,
			SessionID:  sessionID,
			Fallback:   fallback,
		})
	}

	return selected, nil
}

// Wait blocks until pending cache writes finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) rememberSelection(ctx context.Context, sessionID string, adID int64) {
	base := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		writeCtx, cancel := context.WithTimeout(base, cacheWriteTimeout)
		defer cancel()

		if err := s.cache.Put(writeCtx, sessionID, adID); err != nil {
			logging.Ctx(base).Warn().Err(err).Str("session_id", sessionID).Msg("selection cache write failed")
		}
	}()
}

func (s *Service) advertiserName(ctx context.Context, id *int64) string {
	if id == nil {
		return domain.UnknownAdvertiser
	}
	if s.advertisers == nil {
		return domain.PlaceholderAdvertiserName(*id)
	}

	name, err := s.advertisers.GetNameByID(ctx, *id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Int64("advertiser_id", *id).Msg("advertiser lookup failed")
		}
		return domain.PlaceholderAdvertiserName(*id)
	}
	return name
}
