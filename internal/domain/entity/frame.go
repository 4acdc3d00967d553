package entity

type FrameLabel string

const (
	LabelNormal      FrameLabel = "normal"
	LabelBlackScreen FrameLabel = "black_screen"
	LabelWhiteScreen FrameLabel = "white_screen"
	LabelNearlyBlack FrameLabel = "nearly_black"
)

// FrameSample is one still extracted from the recording. Index is extraction
// order, Timestamp the position in seconds. FreezeSeconds is non-zero only on
// a frame that preceded a collapsed run of near-identical frames.
type FrameSample struct {
	Index         int
	Timestamp     float64
	Path          string
	Size          int64
	Label         FrameLabel
	FreezeSeconds int
}

// PersistedFrame is the durable record of a retained frame after its image has
// been uploaded to object storage.
type PersistedFrame struct {
	Index         int     `json:"index"`
	Timestamp     float64 `json:"timestamp"`
	FreezeSeconds int     `json:"freeze_seconds,omitempty"`
	Locator       string  `json:"locator"`
}
