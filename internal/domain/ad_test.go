package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAd_IsEligible(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		ad   Ad
		want bool
	}{
		{"active without window", Ad{Status: AdActive}, true},
		{"inactive", Ad{Status: AdInactive}, false},
		{"scheduled", Ad{Status: AdScheduled}, false},
		{"starts today", Ad{Status: AdActive, StartDate: date(2026, 3, 15)}, true},
		{"starts tomorrow", Ad{Status: AdActive, StartDate: date(2026, 3, 16)}, false},
		{"ends today", Ad{Status: AdActive, EndDate: date(2026, 3, 15)}, true},
		{"ended yesterday", Ad{Status: AdActive, EndDate: date(2026, 3, 14)}, false},
		{"inside window", Ad{Status: AdActive, StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ad.IsEligible(now))
		})
	}
}

func TestAd_IsEligible_UsesUTCDate(t *testing.T) {
	// 23:30 at UTC-5 is already the next UTC day.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, loc)

	ad := Ad{Status: AdActive, EndDate: date(2026, 3, 15)}
	assert.False(t, ad.IsEligible(now))
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(0, 0))
	assert.Equal(t, 50.0, CompletionRate(1, 2))
	assert.Equal(t, 100.0, CompletionRate(3, 3))
}

func TestWatchPercentage(t *testing.T) {
	assert.Equal(t, 0, WatchPercentage(10, 0))
	assert.Equal(t, 80, WatchPercentage(24, 30))
	assert.Equal(t, 100, WatchPercentage(45, 30))
	assert.Equal(t, 100, WatchPercentage(math.MaxInt, 30))
}

func TestAdStatus_Valid(t *testing.T) {
	assert.True(t, AdScheduled.Valid())
	assert.False(t, AdStatus("deleted").Valid())
}
