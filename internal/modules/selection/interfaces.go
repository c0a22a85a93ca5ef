package selection

import (
	"context"
	"time"

	"adservice/internal/domain"
)

type AdCatalog interface {
	GetEligibleAds(ctx context.Context, now time.Time) ([]domain.Ad, error)
}

type ImpressionHistory interface {
	GetRecentAdIds(ctx context.Context, mac string, since, until time.Time) ([]int64, error)
}

type AdvertiserDirectory interface {
	GetNameByID(ctx context.Context, id int64) (string, error)
}

// SelectionCache remembers the ad chosen for a session.
type SelectionCache interface {
	Put(ctx context.Context, sessionID string, adID int64) error
}

// EventPublisher is optional; a nil publisher disables live events.
type EventPublisher interface {
	Publish(eventType string, payload any)
}

type Observer interface {
	ObserveSelection(fallback bool)
}

// Rand is satisfied by *math/rand/v2.Rand.
type Rand interface {
	Float64() float64
	IntN(n int) int
}
