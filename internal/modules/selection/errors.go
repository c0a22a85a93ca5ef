package selection

import "errors"

var (
	ErrNoAdsAvailable = errors.New("no ads available")
	ErrValidation     = errors.New("validation error")
)
