package ads

import "mime/multipart"

// UploadInput carries the multipart upload. Nil pointers take the defaults.
type UploadInput struct {
	File            *multipart.FileHeader
	Name            string
	AdvertiserID    *int64
	Weight          *int
	DurationSeconds *int
}

type UpdateStatusRequest struct {
	Status *string `json:"status"`
	Weight *int    `json:"weight"`
}
