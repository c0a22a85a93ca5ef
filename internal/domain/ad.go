package domain

import "time"

type AdStatus string

const (
	AdActive    AdStatus = "active"
	AdInactive  AdStatus = "inactive"
	AdScheduled AdStatus = "scheduled"
)

const (
	DefaultAdDuration = 30
	DefaultAdWeight   = 1
)

func (s AdStatus) Valid() bool {
	switch s {
	case AdActive, AdInactive, AdScheduled:
		return true
	}
	return false
}

type Ad struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	AdvertiserID    *int64     `json:"advertiser_id,omitempty"`
	VideoURL        string     `json:"video_url"`
	DurationSeconds int        `json:"duration_seconds"`
	Weight          int        `json:"weight"`
	Status          AdStatus   `json:"status"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsEligible reports whether the ad may be served on the calendar day of now.
// Start and end dates are inclusive and compared as UTC dates.
func (a *Ad) IsEligible(now time.Time) bool {
	if a.Status != AdActive {
		return false
	}
	today := Today(now)
	if a.StartDate != nil && Today(*a.StartDate).After(today) {
		return false
	}
	if a.EndDate != nil && Today(*a.EndDate).Before(today) {
		return false
	}
	return true
}

// Today truncates t to midnight UTC.
func Today(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AdSummary is an ad with its impression statistics.
type AdSummary struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Status          AdStatus  `json:"status"`
	Weight          int       `json:"weight"`
	DurationSeconds int       `json:"duration_seconds"`
	Impressions     int64     `json:"impressions"`
	CompletedViews  int64     `json:"completed_views"`
	CompletionRate  float64   `json:"completion_rate"`
	CreatedAt       time.Time `json:"created_at"`
}

// CompletionRate returns completed/total as a percentage, or 0 when nothing was shown.
func CompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
