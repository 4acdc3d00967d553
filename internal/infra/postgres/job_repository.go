package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.RecordingJob) error {
	query := `
		INSERT INTO recording_jobs (
			id, video_url, video_key, status, current_stage, backend,
			video_duration, frame_count, duplicate_count, freeze_count,
			error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err := r.pool.Exec(ctx, query,
		job.ID, job.VideoURL, job.VideoKey, string(job.Status), job.CurrentStage,
		job.Backend, job.VideoDuration, job.FrameCount, job.DuplicateCount,
		job.FreezeCount, job.ErrorMessage, job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.RecordingJob) error {
	query := `
		UPDATE recording_jobs SET
			status=$2, current_stage=$3, backend=$4, video_duration=$5,
			frame_count=$6, duplicate_count=$7, freeze_count=$8,
			error_message=$9, updated_at=$10, completed_at=$11
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.CurrentStage, job.Backend,
		job.VideoDuration, job.FrameCount, job.DuplicateCount, job.FreezeCount,
		job.ErrorMessage, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RecordingJob, error) {
	query := `
		SELECT id, video_url, video_key, status, current_stage, backend,
			video_duration, frame_count, duplicate_count, freeze_count,
			error_message, created_at, updated_at, completed_at
		FROM recording_jobs WHERE id=$1`

	job := &entity.RecordingJob{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.VideoURL, &job.VideoKey, &status, &job.CurrentStage,
		&job.Backend, &job.VideoDuration, &job.FrameCount, &job.DuplicateCount,
		&job.FreezeCount, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	job.Status = entity.JobStatus(status)
	return job, nil
}
