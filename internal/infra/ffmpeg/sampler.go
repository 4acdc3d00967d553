package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

// usableWindowTrim excludes the first and last ~5% of the recording: app
// launch and recording stop produce transition artifacts, not signal.
const usableWindowTrim = 0.05

// Sampler extracts one reduced-resolution still per computed timestamp.
type Sampler struct {
	runner        CommandRunner
	width         int
	height        int
	workers       int
	minFrameBytes int64
	logger        *zap.Logger
}

type SamplerConfig struct {
	Width         int
	Height        int
	Workers       int
	MinFrameBytes int64
}

func NewSampler(runner CommandRunner, cfg SamplerConfig, logger *zap.Logger) *Sampler {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Sampler{
		runner:        runner,
		width:         cfg.Width,
		height:        cfg.Height,
		workers:       cfg.Workers,
		minFrameBytes: cfg.MinFrameBytes,
		logger:        logger,
	}
}

// FrameBudget is the target number of stills for a given duration. It is
// non-decreasing and capped at 80: longer sessions get proportionally more
// coverage while bounding downstream inference cost.
func FrameBudget(duration float64) int {
	switch {
	case duration < 30:
		return 10
	case duration < 60:
		return 15
	case duration < 120:
		return 25
	case duration < 180:
		return 35
	case duration < 300:
		return 45
	case duration < 600:
		return 60
	default:
		return 80
	}
}

// sampleTimestamps spaces the frame budget evenly across the usable window,
// then collapses candidates that land in the same whole second.
func sampleTimestamps(duration float64) []float64 {
	budget := FrameBudget(duration)
	start := math.Min(1, usableWindowTrim*duration)
	end := math.Max(duration-1, (1-usableWindowTrim)*duration)
	if end < start {
		end = start
	}

	var timestamps []float64
	seen := make(map[int]bool)
	for i := 0; i < budget; i++ {
		ts := start
		if budget > 1 {
			ts = start + float64(i)*(end-start)/float64(budget-1)
		}
		second := int(ts)
		if seen[second] {
			continue
		}
		seen[second] = true
		timestamps = append(timestamps, ts)
	}
	return timestamps
}

// Sample extracts stills for every candidate timestamp, dispatching
// extractions across a bounded worker pool. Failed timestamps are dropped;
// only a fully empty result is an error (entity.ErrNoFramesExtracted), which
// the driver turns into the text-only path.
func (s *Sampler) Sample(ctx context.Context, videoPath, outputDir string, duration float64) ([]entity.FrameSample, error) {
	timestamps := sampleTimestamps(duration)

	var mu sync.Mutex
	var wg sync.WaitGroup
	samples := make([]entity.FrameSample, 0, len(timestamps))
	sem := make(chan struct{}, s.workers)

	for i, ts := range timestamps {
		wg.Add(1)
		go func(i int, ts float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			framePath := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", i))
			size, err := s.extractOne(ctx, videoPath, framePath, ts)
			if err != nil {
				s.logger.Warn("frame extraction failed, skipping timestamp",
					zap.Float64("timestamp", ts), zap.Error(err))
				return
			}

			mu.Lock()
			samples = append(samples, entity.FrameSample{
				Timestamp: ts,
				Path:      framePath,
				Size:      size,
			})
			mu.Unlock()
		}(i, ts)
	}
	wg.Wait()

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %d timestamps attempted", entity.ErrNoFramesExtracted, len(timestamps))
	}

	sort.Slice(samples, func(a, b int) bool { return samples[a].Timestamp < samples[b].Timestamp })
	for i := range samples {
		samples[i].Index = i
	}

	s.logger.Info("frames sampled",
		zap.Int("extracted", len(samples)),
		zap.Int("attempted", len(timestamps)),
		zap.Float64("duration", duration),
	)
	return samples, nil
}

func (s *Sampler) extractOne(ctx context.Context, videoPath, framePath string, ts float64) (int64, error) {
	err := s.runner.Run(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.3f", ts),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", s.width, s.height),
		"-q:v", "4",
		"-y",
		framePath,
	)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(framePath)
	if err != nil {
		return 0, fmt.Errorf("stat extracted frame: %w", err)
	}
	// A near-empty file means ffmpeg wrote a header and nothing else.
	if info.Size() < s.minFrameBytes {
		os.Remove(framePath)
		return 0, fmt.Errorf("extracted frame implausibly small (%d bytes)", info.Size())
	}
	return info.Size(), nil
}
