package ads

import (
	"context"

	"adservice/internal/domain"
)

type AdStore interface {
	Create(ctx context.Context, a *domain.Ad) error
	UpdateStatusWeight(ctx context.Context, id int64, status *domain.AdStatus, weight *int) error
	ListAdsWithImpressionCounts(ctx context.Context) ([]domain.AdSummary, error)
}
