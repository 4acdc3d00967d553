package entity

// AnalysisResult is the terminal output of one recording job. Success is true
// if and only if some backend returned non-empty text. Frames is empty on the
// text-only path and on failure.
type AnalysisResult struct {
	Success        bool
	Report         string
	VerdictContext string
	Backend        string
	Frames         []PersistedFrame
	ErrorMessage   string
}

func SuccessResult(report, verdict, backend string, frames []PersistedFrame) *AnalysisResult {
	return &AnalysisResult{
		Success:        true,
		Report:         report,
		VerdictContext: verdict,
		Backend:        backend,
		Frames:         frames,
	}
}

func FailureResult(errMsg string) *AnalysisResult {
	return &AnalysisResult{ErrorMessage: errMsg}
}
