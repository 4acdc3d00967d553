package port

import "context"

// VideoLocator addresses a submitted recording. Exactly one of URL or
// ObjectKey is set; AuthToken is an optional credential for URL downloads.
type VideoLocator struct {
	URL       string
	ObjectKey string
	AuthToken string
}

// VideoSource downloads the recording to a local path. Implementations return
// *entity.AcquisitionError on transport failure so the driver can surface the
// status code.
type VideoSource interface {
	Fetch(ctx context.Context, loc VideoLocator, destPath string) error
}

// FrameStore uploads a retained frame image and returns its durable locator.
type FrameStore interface {
	UploadFrame(ctx context.Context, jobID string, index int, framePath string) (string, error)
}
