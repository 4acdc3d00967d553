package frameproc

import "github.com/fundup7/bharatqa-backend/internal/domain/entity"

// minEvidenceFrames is the smallest frame set an analysis may proceed with
// when raw extraction produced at least that many.
const minEvidenceFrames = 3

// Cap bounds the unique frame set at maxFrames by taking every k-th frame,
// k = ceil(n/maxFrames), preserving order. If filtering left implausibly
// little visual evidence while extraction itself produced enough, the
// earliest raw frames are used instead: deduplication must never starve the
// analysis.
func Cap(unique, raw []entity.FrameSample, maxFrames int) []entity.FrameSample {
	capped := unique
	if len(unique) > maxFrames {
		k := (len(unique) + maxFrames - 1) / maxFrames
		capped = make([]entity.FrameSample, 0, maxFrames)
		for i := 0; i < len(unique); i += k {
			capped = append(capped, unique[i])
		}
	}

	if len(capped) < minEvidenceFrames && len(raw) >= minEvidenceFrames {
		fallback := make([]entity.FrameSample, minEvidenceFrames)
		copy(fallback, raw[:minEvidenceFrames])
		return fallback
	}
	return capped
}
