package port

import (
	"context"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

// Prober reads the duration of a local video file in seconds.
type Prober interface {
	Duration(ctx context.Context, videoPath string) (float64, error)
}

// FrameSampler extracts reduced-resolution stills at computed timestamps.
// Individual timestamp failures are tolerated; the returned samples are sorted
// ascending by timestamp. entity.ErrNoFramesExtracted is returned only when no
// timestamp produced a usable image.
type FrameSampler interface {
	Sample(ctx context.Context, videoPath, outputDir string, duration float64) ([]entity.FrameSample, error)
}
