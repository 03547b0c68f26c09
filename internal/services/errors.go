package services

import "errors"

// Measurement service errors
var (
	// Upload errors
	ErrEmptyUpload     = errors.New("uploaded file is empty")
	ErrInvalidFileType = errors.New("invalid file type")

	// Record errors
	ErrNoFilesFound   = errors.New("no measurement files found")
	ErrRecordNotFound = errors.New("measurement record not found")

	// ELN errors
	ErrELNDisabled = errors.New("eln integration is not configured")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
