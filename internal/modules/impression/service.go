package impression

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"adservice/internal/cache"
	"adservice/internal/domain"
	"adservice/internal/logging"
	"adservice/internal/pkg/mac"
	"adservice/internal/repository"
)

const (
	EventImpression = "impression"

	DefaultMinWatchPercentage = 80
)

type Service struct {
	ads         AdLookup
	impressions ImpressionWriter
	selections  SelectionReader

	publisher   EventPublisher
	observer    Observer
	minWatchPct int
	now         func() time.Time
}

func NewService(ads AdLookup, impressions ImpressionWriter, selections SelectionReader, minWatchPct int) *Service {
	if minWatchPct <= 0 || minWatchPct > 100 {
		minWatchPct = DefaultMinWatchPercentage
	}
	return &Service{
		ads:         ads,
		impressions: impressions,
		selections:  selections,
		minWatchPct: minWatchPct,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) SetPublisher(p EventPublisher) { s.publisher = p }
func (s *Service) SetObserver(o Observer)        { s.observer = o }

// RecordImpression appends one play event. A nil completed is derived from the watched share of
// the ad's duration.
func (s *Service) RecordImpression(ctx context.Context, adID, sessionID int64, deviceID string, watchedSeconds int, completed *bool) (*domain.Impression, error) {
	if adID <= 0 || sessionID <= 0 || watchedSeconds < 0 {
		return nil, ErrValidation
	}
	device, err := mac.Normalize(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: mac_address: %v", ErrValidation, err)
	}

	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdNotFound
		}
		return nil, err
	}

	done := s.isCompleted(ad.DurationSeconds, watchedSeconds)
	if completed != nil {
		done = *completed
	}

	s.checkSelection(ctx, sessionID, adID)

	imp := &domain.Impression{
		AdID:                   adID,
		SessionID:              sessionID,
		MACAddress:             device,
		ImpressionTime:         s.now(),
		WatchedDurationSeconds: watchedSeconds,
		Completed:              done,
	}
	if err := s.impressions.InsertImpression(ctx, imp); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveImpression()
	}
	if s.publisher != nil {
		s.publisher.Publish(EventImpression, ImpressionEvent{
			ImpressionID:    imp.ID,
			AdID:            adID,
			MACAddress:      device,
			WatchedSeconds:  watchedSeconds,
			WatchPercentage: domain.WatchPercentage(watchedSeconds, ad.DurationSeconds),
			Completed:       done,
		})
	}

	return imp, nil
}

func (s *Service) isCompleted(duration, watched int) bool {
	if duration <= 0 {
		return true
	}
	watched = min(watched, duration)
	return watched*100 >= s.minWatchPct*duration
}

// checkSelection compares the report with the cached selection. It never rejects the report.
func (s *Service) checkSelection(ctx context.Context, sessionID, adID int64) {
	if s.selections == nil {
		return
	}

	key := strconv.FormatInt(sessionID, 10)
	cached, err := s.selections.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrMiss):
		return
	case err != nil:
		logging.Ctx(ctx).Debug().Err(err).Str("session_id", key).Msg("selection cache read failed")
	case cached != adID:
		logging.Ctx(ctx).Info().
			Str("session_id", key).
			Int64("selected_ad_id", cached).
			Int64("reported_ad_id", adID).
			Msg("impression does not match cached selection")
	}
}
