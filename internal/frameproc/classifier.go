package frameproc

import (
	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

const (
	nearBlackLuma = 16.0
	nearWhiteLuma = 240.0

	// A frame is a solid screen when more than 90% of its grid cells sit at
	// one extreme.
	solidFraction = 0.9

	// Below this average luminance the frame is effectively dark even if not
	// uniformly black.
	nearlyBlackAvg = 15.0
)

// Classify labels a frame as normal, black_screen, white_screen or
// nearly_black from its downsampled grid statistics.
func Classify(path string) (entity.FrameLabel, error) {
	g, err := loadGrid(path)
	if err != nil {
		return entity.LabelNormal, err
	}
	return classifyGrid(g), nil
}

func classifyGrid(g *pixelGrid) entity.FrameLabel {
	var sum float64
	var blackCells, whiteCells int

	for y := 0; y < gridN; y++ {
		for x := 0; x < gridN; x++ {
			l := g.luminance(x, y)
			sum += l
			if l <= nearBlackLuma {
				blackCells++
			}
			if l >= nearWhiteLuma {
				whiteCells++
			}
		}
	}

	total := float64(gridN * gridN)
	switch {
	case float64(blackCells)/total > solidFraction:
		return entity.LabelBlackScreen
	case float64(whiteCells)/total > solidFraction:
		return entity.LabelWhiteScreen
	case sum/total < nearlyBlackAvg:
		return entity.LabelNearlyBlack
	default:
		return entity.LabelNormal
	}
}

// DropDark removes black_screen and nearly_black frames before deduplication.
// Those are screen-off or hard-cut artifacts, not test content. White frames
// stay: a blank white screen is often the bug being reported.
func DropDark(frames []entity.FrameSample) []entity.FrameSample {
	kept := make([]entity.FrameSample, 0, len(frames))
	for _, f := range frames {
		if f.Label == entity.LabelBlackScreen || f.Label == entity.LabelNearlyBlack {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
