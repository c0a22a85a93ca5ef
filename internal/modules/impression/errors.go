package impression

import "errors"

var (
	ErrAdNotFound = errors.New("ad not found")
	ErrValidation = errors.New("validation error")
)
