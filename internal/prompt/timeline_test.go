package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

func TestBuildTimelineGapsAndCounts(t *testing.T) {
	frames := []entity.FrameSample{
		{Index: 0, Timestamp: 2},
		{Index: 1, Timestamp: 6},                    // +4s, unremarkable
		{Index: 2, Timestamp: 13},                   // +7s, slow
		{Index: 3, Timestamp: 28, FreezeSeconds: 9}, // +15s, very slow
	}

	tl := BuildTimeline(frames, 30)

	require.Len(t, tl.Entries, 4)
	assert.Zero(t, tl.Entries[0].Gap)
	assert.InDelta(t, 4, tl.Entries[1].Gap, 0.001)
	assert.InDelta(t, 7, tl.Entries[2].Gap, 0.001)
	assert.InDelta(t, 15, tl.Entries[3].Gap, 0.001)

	assert.Equal(t, 1, tl.SlowCount)
	assert.Equal(t, 1, tl.VerySlowCount)
	assert.Equal(t, 1, tl.FrozenCount)
	assert.InDelta(t, 26.0/3.0, tl.AverageGap, 0.001)
	assert.InDelta(t, 30, tl.TotalDuration, 0.001)
}

func TestBuildTimelineSingleFrame(t *testing.T) {
	tl := BuildTimeline([]entity.FrameSample{{Timestamp: 5}}, 12)

	require.Len(t, tl.Entries, 1)
	assert.Zero(t, tl.AverageGap)
	assert.Zero(t, tl.SlowCount)
}

func TestRenderAnnotations(t *testing.T) {
	frames := []entity.FrameSample{
		{Timestamp: 3},
		{Timestamp: 75, FreezeSeconds: 12, Label: entity.LabelWhiteScreen},
	}
	out := BuildTimeline(frames, 90).Render()

	assert.Contains(t, out, "Frame 1 [00:03]")
	assert.Contains(t, out, "Frame 2 [01:15]")
	assert.Contains(t, out, "(+72.0s)")
	assert.Contains(t, out, "[very slow transition]")
	assert.Contains(t, out, "[screen frozen ~12s]")
	assert.Contains(t, out, "[blank white screen]")
	assert.Contains(t, out, "Recording duration: 90s. Unique screens: 2.")
	assert.Contains(t, out, "Freeze events: 1.")
}

func TestRenderFirstFrameCarriesNoGap(t *testing.T) {
	out := BuildTimeline([]entity.FrameSample{{Timestamp: 1}, {Timestamp: 4}}, 10).Render()

	assert.NotContains(t, out, "Frame 1 [00:01] (+")
	assert.Contains(t, out, "Frame 2 [00:04] (+3.0s)")
}
