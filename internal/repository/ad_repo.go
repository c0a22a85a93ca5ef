package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adservice/internal/domain"

	"gorm.io/gorm"
)

type AdRepository struct {
	db *gorm.DB
}

func NewAdRepository(db *gorm.DB) *AdRepository {
	return &AdRepository{db: db}
}

type adModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	Name            string     `gorm:"column:name;size:255;not null"`
	AdvertiserID    *int64     `gorm:"column:advertiser_id"`
	VideoURL        string     `gorm:"column:video_url;size:500"`
	DurationSeconds int        `gorm:"column:duration_seconds"`
	Weight          int        `gorm:"column:weight"`
	Status          string     `gorm:"column:status;size:16;index"`
	StartDate       *time.Time `gorm:"column:start_date;type:date"`
	EndDate         *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (adModel) TableName() string { return "ads" }

func toDomainAd(m adModel) domain.Ad {
	return domain.Ad{
		ID:              m.ID,
		Name:            m.Name,
		AdvertiserID:    m.AdvertiserID,
		VideoURL:        m.VideoURL,
		DurationSeconds: m.DurationSeconds,
		Weight:          m.Weight,
		Status:          domain.AdStatus(m.Status),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toAdModel(a *domain.Ad) adModel {
	return adModel{
		ID:              a.ID,
		Name:            a.Name,
		AdvertiserID:    a.AdvertiserID,
		VideoURL:        a.VideoURL,
		DurationSeconds: a.DurationSeconds,
		Weight:          a.Weight,
		Status:          string(a.Status),
		StartDate:       utcDate(a.StartDate),
		EndDate:         utcDate(a.EndDate),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.Today(*t)
	return &d
}

func (r *AdRepository) Create(ctx context.Context, a *domain.Ad) error {
	m := toAdModel(a)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create ad: %w", err)
	}
	*a = toDomainAd(m)
	return nil
}

func (r *AdRepository) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	var m adModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ad %d: %w", id, err)
	}
	a := toDomainAd(m)
	return &a, nil
}

// GetEligibleAds returns active ads whose date window contains the UTC day of now,
// ordered by ascending id.
func (r *AdRepository) GetEligibleAds(ctx context.Context, now time.Time) ([]domain.Ad, error) {
	today := domain.Today(now)

	var rows []adModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.AdActive)).
		Where("start_date IS NULL OR start_date <= ?", today).
		Where("end_date IS NULL OR end_date >= ?", today).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query eligible ads: %w", err)
	}

	out := make([]domain.Ad, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainAd(m))
	}
	return out, nil
}

// UpdateStatusWeight changes status and/or weight. Nil arguments leave the column untouched.
func (r *AdRepository) UpdateStatusWeight(ctx context.Context, id int64, status *domain.AdStatus, weight *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m adModel
		err := tx.Select("id").First(&m, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get ad %d: %w", id, err)
		}

		updates := map[string]any{"updated_at": time.Now().UTC()}
		if status != nil {
			updates["status"] = string(*status)
		}
		if weight != nil {
			updates["weight"] = *weight
		}

		if err := tx.Model(&adModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update ad %d: %w", id, err)
		}
		return nil
	})
}

func (r *AdRepository) CountByStatus(ctx context.Context, status domain.AdStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&adModel{}).Where("status = ?", string(status)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count ads: %w", err)
	}
	return n, nil
}

type adStatsRow struct {
	ID              int64
	Name            string
	Status          string
	Weight          int
	DurationSeconds int
	CreatedAt       time.Time
	Impressions     int64
	CompletedViews  int64
}

// ListAdsWithImpressionCounts returns every ad with its total and completed impression counts.
func (r *AdRepository) ListAdsWithImpressionCounts(ctx context.Context) ([]domain.AdSummary, error) {
	var rows []adStatsRow
	err := r.db.WithContext(ctx).
		Table("ads AS a").
		Select(`a.id, a.name, a.status, a.weight, a.duration_seconds, a.created_at,
			COUNT(ai.id) AS impressions,
			COALESCE(SUM(CASE WHEN ai.completed THEN 1 ELSE 0 END), 0) AS completed_views`).
		Joins("LEFT JOIN ad_impressions ai ON ai.ad_id = a.id").
		Group("a.id, a.name, a.status, a.weight, a.duration_seconds, a.created_at").
		Order("a.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list ad stats: %w", err)
	}

	out := make([]domain.AdSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AdSummary{
			ID:              row.ID,
			Name:            row.Name,
			Status:          domain.AdStatus(row.Status),
			Weight:          row.Weight,
			DurationSeconds: row.DurationSeconds,
			Impressions:     row.Impressions,
			CompletedViews:  row.CompletedViews,
			CompletionRate:  domain.CompletionRate(row.CompletedViews, row.Impressions),
			CreatedAt:       row.CreatedAt,
		})
	}
	return out, nil
}
