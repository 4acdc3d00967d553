package frameproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

func sequence(n int) []entity.FrameSample {
	frames := make([]entity.FrameSample, n)
	for i := range frames {
		frames[i] = entity.FrameSample{Index: i, Timestamp: float64(i)}
	}
	return frames
}

func TestCapUnderLimitUnchanged(t *testing.T) {
	unique := sequence(50)
	capped := Cap(unique, unique, 50)
	assert.Equal(t, unique, capped)
}

func TestCapStridesOverLimit(t *testing.T) {
	unique := sequence(120)
	capped := Cap(unique, unique, 50)

	// 120 frames with a stride of 3 keeps indexes 0, 3, 6, ...
	require.Len(t, capped, 40)
	assert.Equal(t, 0, capped[0].Index)
	assert.Equal(t, 3, capped[1].Index)
	assert.Equal(t, 117, capped[39].Index)
}

func TestCapNeverExceedsLimit(t *testing.T) {
	for _, n := range []int{1, 49, 50, 51, 99, 100, 101, 250, 500} {
		unique := sequence(n)
		capped := Cap(unique, unique, 50)
		assert.LessOrEqual(t, len(capped), 50, "n=%d", n)
	}
}

func TestCapPreservesOrder(t *testing.T) {
	capped := Cap(sequence(200), sequence(200), 50)
	for i := 1; i < len(capped); i++ {
		assert.Greater(t, capped[i].Index, capped[i-1].Index)
	}
}

func TestCapFallsBackToEarliestRawFrames(t *testing.T) {
	raw := sequence(10)
	unique := raw[:1]

	capped := Cap(unique, raw, 50)

	require.Len(t, capped, 3)
	assert.Equal(t, 0, capped[0].Index)
	assert.Equal(t, 1, capped[1].Index)
	assert.Equal(t, 2, capped[2].Index)
}

func TestCapNoFallbackWhenRawIsSparse(t *testing.T) {
	raw := sequence(2)
	capped := Cap(raw, raw, 50)
	assert.Len(t, capped, 2)
}
