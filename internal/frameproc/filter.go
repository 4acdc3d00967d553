package frameproc

import (
	"math"

	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

// FilterResult is the output of one deduplication pass.
type FilterResult struct {
	Unique       []entity.FrameSample
	Duplicates   int
	FreezeEvents int
}

// DedupFilter collapses runs of near-identical consecutive frames. Every
// candidate is compared against the most recently retained frame only, which
// keeps the pass linear in frame count.
type DedupFilter struct {
	threshold int
	logger    *zap.Logger
}

func NewDedupFilter(threshold int, logger *zap.Logger) *DedupFilter {
	return &DedupFilter{threshold: threshold, logger: logger}
}

// Filter retains the first frame unconditionally, then walks the sequence
// collapsing duplicates. A run of more than 2 consecutive duplicates becomes
// a freeze event: the retained frame that opened the run carries the rounded
// gap between the last duplicate's timestamp and its own.
func (f *DedupFilter) Filter(frames []entity.FrameSample) FilterResult {
	if len(frames) == 0 {
		return FilterResult{}
	}

	unique := make([]entity.FrameSample, 0, len(frames))
	unique = append(unique, frames[0])

	lastGrid, err := loadGrid(frames[0].Path)
	if err != nil {
		f.logger.Warn("frame undecodable, similarity disabled for it",
			zap.String("path", frames[0].Path), zap.Error(err))
	}

	var duplicates, freezes, streak int
	var lastDupTS float64

	for _, cand := range frames[1:] {
		retained := &unique[len(unique)-1]

		score := 0
		var candGrid *pixelGrid
		if lastGrid != nil && !sizesDiverge(retained.Size, cand.Size) {
			candGrid, err = loadGrid(cand.Path)
			if err != nil {
				f.logger.Warn("frame undecodable, retaining as distinct",
					zap.String("path", cand.Path), zap.Error(err))
			} else {
				score = similarity(lastGrid, candGrid)
			}
		}

		if score >= f.threshold {
			streak++
			lastDupTS = cand.Timestamp
			duplicates++
			continue
		}

		if streak > 2 {
			retained.FreezeSeconds = roundGap(lastDupTS - retained.Timestamp)
			freezes++
		}
		streak = 0

		if candGrid == nil {
			candGrid, _ = loadGrid(cand.Path)
		}
		lastGrid = candGrid
		unique = append(unique, cand)
	}

	// A duplicate run still open at end of input freezes the final retained frame.
	if streak > 2 {
		last := &unique[len(unique)-1]
		last.FreezeSeconds = roundGap(lastDupTS - last.Timestamp)
		freezes++
	}

	return FilterResult{Unique: unique, Duplicates: duplicates, FreezeEvents: freezes}
}

func roundGap(seconds float64) int {
	return int(math.Round(seconds))
}
