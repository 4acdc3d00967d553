package prompt

import (
	"fmt"
	"strings"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/fundup7/bharatqa-backend/internal/report"
)

// BuildMultimodal renders the full analysis prompt: timeline transcript,
// device telemetry, tester narrative and testing instructions. The attached
// frame images are sent alongside by the inference backend; their order
// matches the timeline.
func BuildMultimodal(rc *entity.ReportContext, tl *Timeline) string {
	var b strings.Builder

	b.WriteString("You are a senior mobile QA analyst reviewing a screen recording submitted as evidence for a crowdsourced bug report.\n\n")
	b.WriteString("The attached images are unique screens extracted from the recording, in order. Their timing:\n\n")
	b.WriteString(tl.Render())

	writeContext(&b, rc)
	writeReportInstructions(&b, true)
	return b.String()
}

// BuildTextOnly renders the fallback prompt used when no usable frames
// survived extraction. Same report structure, but the model is told visual
// evidence is unavailable.
func BuildTextOnly(rc *entity.ReportContext, videoDuration float64) string {
	var b strings.Builder

	b.WriteString("You are a senior mobile QA analyst reviewing a crowdsourced bug report.\n\n")
	fmt.Fprintf(&b, "A screen recording of %.0fs was submitted, but no usable frames could be extracted from it. ", videoDuration)
	b.WriteString("Visual evidence is unavailable: reason entirely from the tester's narrative and the device telemetry below, and say so where the evidence is insufficient.\n")

	writeContext(&b, rc)
	writeReportInstructions(&b, false)
	return b.String()
}

func writeContext(b *strings.Builder, rc *entity.ReportContext) {
	if rc.Instructions != "" {
		b.WriteString("\n--- What the tester was asked to test ---\n")
		b.WriteString(strings.TrimSpace(rc.Instructions))
		b.WriteByte('\n')
	}
	if rc.Narrative != "" {
		b.WriteString("\n--- Tester's bug description ---\n")
		b.WriteString(strings.TrimSpace(rc.Narrative))
		b.WriteByte('\n')
	}
	if rc.Telemetry != "" {
		b.WriteString("\n--- Device telemetry ---\n")
		b.WriteString(strings.TrimSpace(rc.Telemetry))
		b.WriteByte('\n')
	}
}

func writeReportInstructions(b *strings.Builder, withFrames bool) {
	b.WriteString("\nWrite a quality-assurance report with these sections:\n")
	b.WriteString("1. App overview - what app and flow the recording shows\n")
	if withFrames {
		b.WriteString("2. Reproduction steps - numbered, grounded in the frames and their timestamps\n")
	} else {
		b.WriteString("2. Reproduction steps - numbered, as far as the narrative supports them\n")
	}
	b.WriteString("3. Root cause hypothesis - the most likely technical cause\n")
	b.WriteString("4. Severity - one of critical/major/minor/cosmetic, with a one-line justification\n")
	b.WriteString("5. Top fixes - the 2-3 changes most likely to resolve the issue\n")

	fmt.Fprintf(b, "\nAfter the report, output the line %q on its own, then an internal note for platform moderators: ", report.VerdictDelimiter)
	b.WriteString("start with the single word \"approve\" or \"reject\" (approve when the evidence plausibly shows a real bug worth paying out), followed by 2-3 sentences of reasoning. Always include this section.\n")
}
