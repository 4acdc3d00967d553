package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadableDuration means the container metadata could not be probed
	// or reported a zero duration.
	ErrUnreadableDuration = errors.New("video duration unreadable")

	// ErrNoFramesExtracted means every sampled timestamp failed extraction.
	// The job falls back to the text-only prompt rather than aborting.
	ErrNoFramesExtracted = errors.New("no frames extracted")

	// ErrBackendsExhausted means every configured inference backend failed.
	ErrBackendsExhausted = errors.New("all inference backends failed")
)

// AcquisitionError is a terminal failure to download the recording.
type AcquisitionError struct {
	Locator    string
	StatusCode int
	Err        error
}

func (e *AcquisitionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("acquire %s: unexpected status %d", e.Locator, e.StatusCode)
	}
	return fmt.Sprintf("acquire %s: %v", e.Locator, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// BackendError wraps a single inference backend failure. One failing backend
// is tolerated; the orchestrator moves on to the next in the priority list.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
