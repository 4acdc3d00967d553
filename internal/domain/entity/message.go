package entity

import "github.com/google/uuid"

// AnalysisRequestMessage is the inbound message from the analysis.request queue.
// Exactly one of VideoURL or VideoKey addresses the recording; AuthToken is an
// optional credential for URL downloads.
type AnalysisRequestMessage struct {
	JobID     uuid.UUID `json:"job_id"`
	VideoURL  string    `json:"video_url,omitempty"`
	VideoKey  string    `json:"video_key,omitempty"`
	AuthToken string    `json:"auth_token,omitempty"`
}

// AnalysisStatusMessage is the outbound message published to the analysis.status queue.
type AnalysisStatusMessage struct {
	JobID          uuid.UUID `json:"job_id"`
	Status         JobStatus `json:"status"`
	Backend        string    `json:"backend,omitempty"`
	FrameCount     int       `json:"frame_count,omitempty"`
	DuplicateCount int       `json:"duplicate_count,omitempty"`
	FreezeCount    int       `json:"freeze_count,omitempty"`
	Duration       float64   `json:"duration_seconds,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}
