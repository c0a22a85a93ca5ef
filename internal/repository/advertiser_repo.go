package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adservice/internal/domain"

	"gorm.io/gorm"
)

type AdvertiserRepository struct {
	db *gorm.DB
}

func NewAdvertiserRepository(db *gorm.DB) *AdvertiserRepository {
	return &AdvertiserRepository{db: db}
}

type advertiserModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;size:255;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (advertiserModel) TableName() string { return "advertisers" }

func (r *AdvertiserRepository) Create(ctx context.Context, a *domain.Advertiser) error {
	m := advertiserModel{ID: a.ID, Name: a.Name}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create advertiser: %w", err)
	}
	a.ID, a.CreatedAt = m.ID, m.CreatedAt
	return nil
}

func (r *AdvertiserRepository) GetNameByID(ctx context.Context, id int64) (string, error) {
	var m advertiserModel
	err := r.db.WithContext(ctx).Select("id", "name").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get advertiser %d: %w", id, err)
	}
	return m.Name, nil
}
