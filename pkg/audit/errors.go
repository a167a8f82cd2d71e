package audit

import "errors"

var (
	ErrStorageNotAvailable = errors.New("audit storage is unavailable")
	ErrInvalidEvent        = errors.New("invalid intrusion event")
	ErrEventValidation     = errors.New("intrusion event failed validation")
	// ErrStorageTimeout is returned when an async write could not be queued or drained in time.
	ErrStorageTimeout = errors.New("audit storage operation timed out")
)
