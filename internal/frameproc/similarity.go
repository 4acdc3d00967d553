package frameproc

import "math"

// byteSizeDivergence is the encoded-size difference beyond which two frames
// are assumed distinct without decoding either one.
const byteSizeDivergence = 0.15

// similarity scores two grids 0-100, where 100 is identical. The score is the
// average channel-wise absolute difference mapped onto a percentage.
func similarity(a, b *pixelGrid) int {
	var diff int64
	for y := 0; y < gridN; y++ {
		for x := 0; x < gridN; x++ {
			diff += absDiff(a.r[y][x], b.r[y][x])
			diff += absDiff(a.g[y][x], b.g[y][x])
			diff += absDiff(a.b[y][x], b.b[y][x])
		}
	}
	avg := float64(diff) / float64(gridN*gridN*3)
	return int(math.Round(100 - avg*100/255))
}

// sizesDiverge reports whether two encoded frame sizes differ by more than
// 15%, the cheap early-out before any pixel comparison.
func sizesDiverge(a, b int64) bool {
	if a == 0 || b == 0 {
		return a != b
	}
	larger, smaller := a, b
	if smaller > larger {
		larger, smaller = smaller, larger
	}
	return float64(larger-smaller)/float64(larger) > byteSizeDivergence
}

func absDiff(a, b uint8) int64 {
	if a > b {
		return int64(a - b)
	}
	return int64(b - a)
}
