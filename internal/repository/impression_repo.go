package repository

import (
	"context"
	"fmt"
	"time"

	"adservice/internal/domain"

	"gorm.io/gorm"
)

type ImpressionRepository struct {
	db *gorm.DB
}

func NewImpressionRepository(db *gorm.DB) *ImpressionRepository {
	return &ImpressionRepository{db: db}
}

type impressionModel struct {
	ID                     int64     `gorm:"column:id;primaryKey"`
	AdID                   int64     `gorm:"column:ad_id;not null;index"`
	SessionID              int64     `gorm:"column:session_id;not null"`
	MACAddress             string    `gorm:"column:mac_address;size:17;not null;index:idx_ad_impressions_mac_time,priority:1"`
	ImpressionTime         time.Time `gorm:"column:impression_time;index:idx_ad_impressions_mac_time,priority:2"`
	WatchedDurationSeconds int       `gorm:"column:watched_duration_seconds"`
	Completed              bool      `gorm:"column:completed"`
}

func (impressionModel) TableName() string { return "ad_impressions" }

func toDomainImpression(m impressionModel) domain.Impression {
	return domain.Impression{
		ID:                     m.ID,
		AdID:                   m.AdID,
		SessionID:              m.SessionID,
		MACAddress:             m.MACAddress,
		ImpressionTime:         m.ImpressionTime,
		WatchedDurationSeconds: m.WatchedDurationSeconds,
		Completed:              m.Completed,
	}
}

// InsertImpression appends one row. Existing rows are never touched.
func (r *ImpressionRepository) InsertImpression(ctx context.Context, imp *domain.Impression) error {
	m := impressionModel{
		AdID:                   imp.AdID,
		SessionID:              imp.SessionID,
		MACAddress:             imp.MACAddress,
		ImpressionTime:         imp.ImpressionTime.UTC(),
		WatchedDurationSeconds: imp.WatchedDurationSeconds,
		Completed:              imp.Completed,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert impression: %w", err)
	}
	*imp = toDomainImpression(m)
	return nil
}

// GetRecentAdIds returns the distinct ad ids shown to mac in [since, until].
func (r *ImpressionRepository) GetRecentAdIds(ctx context.Context, mac string, since, until time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&impressionModel{}).
		Distinct().
		Where("mac_address = ?", mac).
		Where("impression_time >= ? AND impression_time <= ?", since.UTC(), until.UTC()).
		Pluck("ad_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("query recent ad ids: %w", err)
	}
	return ids, nil
}

func (r *ImpressionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&impressionModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count impressions: %w", err)
	}
	return n, nil
}

// DeleteOlderThan is used by the retention job only.
func (r *ImpressionRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("impression_time < ?", before.UTC()).Delete(&impressionModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete impressions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
