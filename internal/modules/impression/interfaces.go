package impression

import (
	"context"

	"adservice/internal/domain"
)

type AdLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Ad, error)
}

type ImpressionWriter interface {
	InsertImpression(ctx context.Context, imp *domain.Impression) error
}

// SelectionReader returns the ad last selected for a session.
type SelectionReader interface {
	Get(ctx context.Context, sessionID string) (int64, error)
}

type EventPublisher interface {
	Publish(eventType string, payload any)
}

type Observer interface {
	ObserveImpression()
}
