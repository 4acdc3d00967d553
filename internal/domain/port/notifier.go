package port

import "context"

// FailureNotifier alerts the moderation team when a job terminally fails.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, jobID string, videoLocator string, errorMsg string) error
}
