package report

import "strings"

// VerdictDelimiter is the literal marker separating the public report from
// the internal moderation verdict in a model response. The prompt instructs
// every backend to emit it; this package is the only parser of it.
const VerdictDelimiter = "=====INTERNAL-MODERATION-VERDICT====="

// Partition splits raw model output on the verdict delimiter. Text before it
// (trimmed) is the public report; text after it (trimmed) is the internal
// verdict context. Without the delimiter the whole response is public and the
// internal context is empty. No semantic validation of the verdict happens
// here.
func Partition(raw string) (public, internal string) {
	idx := strings.Index(raw, VerdictDelimiter)
	if idx < 0 {
		return strings.TrimSpace(raw), ""
	}
	public = strings.TrimSpace(raw[:idx])
	internal = strings.TrimSpace(raw[idx+len(VerdictDelimiter):])
	return public, internal
}
