package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// RecordingJob is one request to analyze a submitted screen recording.
// The job id is the id of the bug report the recording was attached to.
type RecordingJob struct {
	ID             uuid.UUID
	VideoURL       string
	VideoKey       string
	Status         JobStatus
	CurrentStage   string
	Backend        string
	VideoDuration  float64
	FrameCount     int
	DuplicateCount int
	FreezeCount    int
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
}

func NewRecordingJob(id uuid.UUID, videoURL, videoKey string) *RecordingJob {
	now := time.Now().UTC()
	return &RecordingJob{
		ID:        id,
		VideoURL:  videoURL,
		VideoKey:  videoKey,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *RecordingJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

func (j *RecordingJob) MarkStage(stage string) {
	j.CurrentStage = stage
	j.UpdatedAt = time.Now().UTC()
}

func (j *RecordingJob) MarkCompleted(backend string, frameCount, duplicates, freezes int) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.Backend = backend
	j.FrameCount = frameCount
	j.DuplicateCount = duplicates
	j.FreezeCount = freezes
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *RecordingJob) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = now
	j.CompletedAt = &now
}

// ReportContext is the bug-report text the analysis prompt is built from.
type ReportContext struct {
	Narrative    string
	Telemetry    string
	Instructions string
}
