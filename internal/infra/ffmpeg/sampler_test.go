package ffmpeg

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

func TestFrameBudget(t *testing.T) {
	tests := []struct {
		duration float64
		want     int
	}{
		{5, 10},
		{29.9, 10},
		{30, 15},
		{59.9, 15},
		{60, 25},
		{119, 25},
		{120, 35},
		{179, 35},
		{180, 45},
		{299, 45},
		{300, 60},
		{599, 60},
		{600, 80},
		{3600, 80},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FrameBudget(tt.duration), "duration=%.1f", tt.duration)
	}
}

func TestFrameBudgetNonDecreasing(t *testing.T) {
	prev := 0
	for d := 1.0; d <= 700; d++ {
		b := FrameBudget(d)
		assert.GreaterOrEqual(t, b, prev, "duration=%.0f", d)
		assert.LessOrEqual(t, b, 80)
		prev = b
	}
}

func TestSampleTimestampsWindow(t *testing.T) {
	duration := 100.0
	timestamps := sampleTimestamps(duration)

	require.NotEmpty(t, timestamps)
	assert.InDelta(t, 1.0, timestamps[0], 0.001, "window opens at min(1s, 5%)")
	assert.InDelta(t, 99.0, timestamps[len(timestamps)-1], 0.001, "window closes at max(d-1s, 95%)")

	for i := 1; i < len(timestamps); i++ {
		assert.Greater(t, timestamps[i], timestamps[i-1])
	}
}

func TestSampleTimestampsWholeSecondDedup(t *testing.T) {
	// A short clip packs the budget into few seconds, forcing collisions.
	timestamps := sampleTimestamps(8)

	seen := make(map[int]bool)
	for _, ts := range timestamps {
		second := int(ts)
		assert.False(t, seen[second], "second %d sampled twice", second)
		seen[second] = true
	}
	assert.LessOrEqual(t, len(timestamps), FrameBudget(8))
}

func writingRunner(t *testing.T, payload []byte, fail func(ts string) bool) fakeRunner {
	t.Helper()
	return fakeRunner{
		run: func(name string, args ...string) error {
			require.Equal(t, "ffmpeg", name)
			require.GreaterOrEqual(t, len(args), 2)
			if fail != nil && fail(args[1]) {
				return errors.New("ffmpeg exit status 1")
			}
			framePath := args[len(args)-1]
			return os.WriteFile(framePath, payload, 0o644)
		},
	}
}

func newTestSampler(runner CommandRunner) *Sampler {
	return NewSampler(runner, SamplerConfig{
		Width:         360,
		Height:        640,
		Workers:       4,
		MinFrameBytes: 64,
	}, zap.NewNop())
}

func TestSampleExtractsAllTimestamps(t *testing.T) {
	payload := make([]byte, 256)
	s := newTestSampler(writingRunner(t, payload, nil))

	samples, err := s.Sample(context.Background(), "/tmp/video.mp4", t.TempDir(), 100)
	require.NoError(t, err)

	assert.Len(t, samples, len(sampleTimestamps(100)))
	for i, sample := range samples {
		assert.Equal(t, i, sample.Index)
		assert.Equal(t, int64(256), sample.Size)
		assert.FileExists(t, sample.Path)
		if i > 0 {
			assert.Greater(t, sample.Timestamp, samples[i-1].Timestamp)
		}
	}
}

func TestSampleSkipsFailedTimestamps(t *testing.T) {
	payload := make([]byte, 256)
	s := newTestSampler(writingRunner(t, payload, func(ts string) bool {
		v, err := strconv.ParseFloat(ts, 64)
		return err == nil && v > 50
	}))

	samples, err := s.Sample(context.Background(), "/tmp/video.mp4", t.TempDir(), 100)
	require.NoError(t, err)

	total := len(sampleTimestamps(100))
	assert.Less(t, len(samples), total)
	assert.NotEmpty(t, samples)
	for _, sample := range samples {
		assert.LessOrEqual(t, sample.Timestamp, 50.0)
	}
}

func TestSampleAllTimestampsFail(t *testing.T) {
	s := newTestSampler(fakeRunner{
		run: func(string, ...string) error { return errors.New("ffmpeg exit status 1") },
	})

	_, err := s.Sample(context.Background(), "/tmp/video.mp4", t.TempDir(), 60)
	assert.ErrorIs(t, err, entity.ErrNoFramesExtracted)
}

func TestSampleDiscardsTruncatedFrames(t *testing.T) {
	// Files below the size floor are header-only ffmpeg writes.
	s := newTestSampler(writingRunner(t, []byte("stub"), nil))

	dir := t.TempDir()
	_, err := s.Sample(context.Background(), "/tmp/video.mp4", dir, 60)
	assert.ErrorIs(t, err, entity.ErrNoFramesExtracted)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "undersized frames are removed")
}
