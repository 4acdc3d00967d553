package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

// Prober reads a video's duration with ffprobe.
type Prober struct {
	runner CommandRunner
}

func NewProber(runner CommandRunner) *Prober {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Prober{runner: runner}
}

func (p *Prober) Duration(ctx context.Context, videoPath string) (float64, error) {
	output, err := p.runner.Output(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", entity.ErrUnreadableDuration, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", entity.ErrUnreadableDuration, strings.TrimSpace(string(output)), err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: duration %.2f", entity.ErrUnreadableDuration, duration)
	}
	return duration, nil
}
