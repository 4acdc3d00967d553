package prompt

import (
	"fmt"
	"strings"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

const (
	slowGapSeconds     = 5.0
	verySlowGapSeconds = 10.0
)

// Entry is one rendered timeline row: a retained frame plus the gap since the
// frame before it.
type Entry struct {
	Frame entity.FrameSample
	Gap   float64
}

// Timeline is the read-only per-job view the prompt is rendered from.
type Timeline struct {
	Entries       []Entry
	TotalDuration float64
	AverageGap    float64
	SlowCount     int
	VerySlowCount int
	FrozenCount   int
}

// BuildTimeline derives gaps and severity counts from the capped unique
// frames. Frames must already be sorted ascending by timestamp.
func BuildTimeline(frames []entity.FrameSample, videoDuration float64) *Timeline {
	tl := &Timeline{TotalDuration: videoDuration}

	var gapSum float64
	prev := 0.0
	for i, f := range frames {
		gap := 0.0
		if i > 0 {
			gap = f.Timestamp - prev
			gapSum += gap
		}
		prev = f.Timestamp

		switch {
		case gap > verySlowGapSeconds:
			tl.VerySlowCount++
		case gap > slowGapSeconds:
			tl.SlowCount++
		}
		if f.FreezeSeconds > 0 {
			tl.FrozenCount++
		}
		tl.Entries = append(tl.Entries, Entry{Frame: f, Gap: gap})
	}

	if len(frames) > 1 {
		tl.AverageGap = gapSum / float64(len(frames)-1)
	}
	return tl
}

// Render produces the timestamped transcript block embedded in the prompt.
func (tl *Timeline) Render() string {
	var b strings.Builder
	for i, e := range tl.Entries {
		fmt.Fprintf(&b, "Frame %d [%s]", i+1, formatTimestamp(e.Frame.Timestamp))
		if i > 0 {
			fmt.Fprintf(&b, " (+%.1fs)", e.Gap)
		}
		switch {
		case e.Gap > verySlowGapSeconds:
			b.WriteString(" [very slow transition]")
		case e.Gap > slowGapSeconds:
			b.WriteString(" [slow transition]")
		}
		if e.Frame.FreezeSeconds > 0 {
			fmt.Fprintf(&b, " [screen frozen ~%ds]", e.Frame.FreezeSeconds)
		}
		if e.Frame.Label == entity.LabelWhiteScreen {
			b.WriteString(" [blank white screen]")
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nRecording duration: %.0fs. Unique screens: %d. Average gap between screens: %.1fs.\n",
		tl.TotalDuration, len(tl.Entries), tl.AverageGap)
	fmt.Fprintf(&b, "Slow transitions: %d. Very slow transitions: %d. Freeze events: %d.\n",
		tl.SlowCount, tl.VerySlowCount, tl.FrozenCount)
	return b.String()
}

func formatTimestamp(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
