package domain

import "time"

// Impression is one reported play of an ad on a device. Rows are append-only.
type Impression struct {
	ID                     int64     `json:"id"`
	AdID                   int64     `json:"ad_id"`
	SessionID              int64     `json:"session_id"`
	MACAddress             string    `json:"mac_address"`
	ImpressionTime         time.Time `json:"impression_time"`
	WatchedDurationSeconds int       `json:"watched_duration_seconds"`
	Completed              bool      `json:"completed"`
}

// WatchPercentage returns how much of an ad of the given duration was watched, capped at 100.
func WatchPercentage(watchedSeconds, durationSeconds int) int {
	if durationSeconds <= 0 {
		return 0
	}
	p := min(watchedSeconds, durationSeconds) * 100 / durationSeconds
	if p > 100 {
		return 100
	}
	return p
}
