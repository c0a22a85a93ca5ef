package impression

type RecordRequest struct {
	AdID                   int64  `json:"ad_id" validate:"required,gt=0"`
	SessionID              int64  `json:"session_id" validate:"required,gt=0"`
	MACAddress             string `json:"mac_address" validate:"required,device_mac"`
	WatchedDurationSeconds *int   `json:"watched_duration_seconds" validate:"required,gte=0"`
	Completed              *bool  `json:"completed"`
}

type ImpressionEvent struct {
	ImpressionID    int64  `json:"impression_id"`
	AdID            int64  `json:"ad_id"`
	MACAddress      string `json:"mac_address"`
	WatchedSeconds  int    `json:"watched_duration_seconds"`
	WatchPercentage int    `json:"watch_percentage"`
	Completed       bool   `json:"completed"`
}
