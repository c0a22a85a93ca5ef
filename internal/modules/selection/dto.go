package selection

type SelectRequest struct {
	MACAddress string `form:"macAddress"`
	SessionID  string `form:"sessionId"`
	DeviceType string `form:"deviceType"`
}

type SelectedAd struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds"`
	AdvertiserName  string `json:"advertiser_name"`

	// Fallback is set when every eligible ad had been shown to the device recently.
	Fallback bool `json:"-"`
}

// SelectionEvent is published to the live feed after each selection.
type SelectionEvent struct {
	AdID       int64  `json:"ad_id"`
	AdName     string `json:"ad_name"`
	MACAddress string `json:"mac_address"`
	SessionID  string `json:"session_id,omitempty"`
	Fallback   bool   `json:"fallback"`
}
