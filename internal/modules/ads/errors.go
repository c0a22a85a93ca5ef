package ads

import "errors"

var (
	ErrNoFile          = errors.New("no video file provided")
	ErrEmptyFilename   = errors.New("no file selected")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
	ErrAdNotFound      = errors.New("ad not found")
	ErrValidation      = errors.New("validation error")
)
