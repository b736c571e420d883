package container

import (
	"errors"
	"fmt"
)

// ErrInvalidFileType carries the exact warning shown to the user when a
// receipt with a disallowed extension is selected.
var ErrInvalidFileType = errors.New("Only .jpg, .jpeg and .png files are accepted.")

// ErrUploadInFlight rejects a new file selection while the previous upload
// has not settled, serializing per-draft mutations.
var ErrUploadInFlight = errors.New("a receipt upload is already in progress")

// UploadError wraps a failed receipt upload so callers can distinguish it
// from a validation rejection and react (the user may simply retry).
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("receipt upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
