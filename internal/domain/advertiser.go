package domain

import (
	"fmt"
	"time"
)

type Advertiser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

const UnknownAdvertiser = "Unknown"

// PlaceholderAdvertiserName is shown for ads whose advertiser row is missing.
func PlaceholderAdvertiserName(id int64) string {
	return fmt.Sprintf("Advertiser %d", id)
}
