package ads

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"adservice/internal/domain"
	"adservice/internal/logging"
	"adservice/internal/repository"
)

const (
	DefaultMaxUploadBytes      = 200 << 20
	DefaultAdvertiserID  int64 = 1
)

type Service struct {
	ads             AdStore
	media           *MediaStore
	defaultDuration int
	maxUploadBytes  int64
	now             func() time.Time
}

func NewService(ads AdStore, media *MediaStore, defaultDuration int, maxUploadBytes int64) *Service {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultAdDuration
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Service{
		ads:             ads,
		media:           media,
		defaultDuration: defaultDuration,
		maxUploadBytes:  maxUploadBytes,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) MaxUploadBytes() int64 { return s.maxUploadBytes }

// ListAdsWithStats returns every ad with impression totals, ordered by id.
func (s *Service) ListAdsWithStats(ctx context.Context) ([]domain.AdSummary, error) {
	return s.ads.ListAdsWithImpressionCounts(ctx)
}

// UploadAd stores the video and creates an active ad pointing at it. The file is removed again
// if the ad row cannot be written.
func (s *Service) UploadAd(ctx context.Context, in UploadInput) (*domain.Ad, error) {
	if in.File == nil {
		return nil, ErrNoFile
	}
	if strings.TrimSpace(in.File.Filename) == "" {
		return nil, ErrEmptyFilename
	}
	if _, ok := videoExtension(in.File.Filename); !ok {
		return nil, ErrInvalidFileType
	}
	if in.File.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	weight := domain.DefaultAdWeight
	if in.Weight != nil {
		weight = *in.Weight
	}
	duration := s.defaultDuration
	if in.DurationSeconds != nil {
		duration = *in.DurationSeconds
	}
	if weight < 0 || duration <= 0 {
		return nil, ErrValidation
	}
	advertiserID := DefaultAdvertiserID
	if in.AdvertiserID != nil {
		advertiserID = *in.AdvertiserID
	}

	src, err := in.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	filename, err := s.media.Save(in.File.Filename, src, s.now())
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = filename
	}

	ad := &domain.Ad{
		Name:            name,
		AdvertiserID:    &advertiserID,
		VideoURL:        VideoURL(filename),
		DurationSeconds: duration,
		Weight:          weight,
		Status:          domain.AdActive,
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		if rmErr := s.media.Remove(filename); rmErr != nil {
			logging.Ctx(ctx).Warn().Err(rmErr).Str("file", filepath.Base(filename)).Msg("remove orphaned upload")
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Int64("ad_id", ad.ID).Str("file", filename).Msg("ad uploaded")
	return ad, nil
}

// UpdateStatus changes status and/or weight of an existing ad.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status *domain.AdStatus, weight *int) error {
	if id <= 0 {
		return ErrValidation
	}
	if status != nil && !status.Valid() {
		return fmt.Errorf("%w: status %q", ErrValidation, *status)
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight must be non-negative", ErrValidation)
	}

	if err := s.ads.UpdateStatusWeight(ctx, id, status, weight); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAdNotFound
		}
		return err
	}
	return nil
}
