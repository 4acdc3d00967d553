package port

import (
	"context"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, job *entity.RecordingJob) error
	Update(ctx context.Context, job *entity.RecordingJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RecordingJob, error)
}

// ReportRepository reads the bug-report text for a job and writes the
// analysis back onto the report record.
type ReportRepository interface {
	FetchContext(ctx context.Context, jobID uuid.UUID) (*entity.ReportContext, error)
	SaveResult(ctx context.Context, jobID uuid.UUID, result *entity.AnalysisResult) error
	SaveFrames(ctx context.Context, jobID uuid.UUID, frames []entity.PersistedFrame) error
}
