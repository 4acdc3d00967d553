package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

// ReportRepository reads bug-report context and writes the analysis outcome
// back onto the report record and its frame records.
type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) FetchContext(ctx context.Context, jobID uuid.UUID) (*entity.ReportContext, error) {
	query := `
		SELECT narrative, device_telemetry, test_instructions
		FROM bug_reports WHERE id=$1`

	rc := &entity.ReportContext{}
	err := r.pool.QueryRow(ctx, query, jobID).Scan(&rc.Narrative, &rc.Telemetry, &rc.Instructions)
	if err != nil {
		return nil, fmt.Errorf("fetch report context: %w", err)
	}
	return rc, nil
}

func (r *ReportRepository) SaveResult(ctx context.Context, jobID uuid.UUID, result *entity.AnalysisResult) error {
	query := `
		UPDATE bug_reports SET
			analysis_report=$2, verdict_context=$3, analysis_backend=$4,
			analysis_success=$5, analysis_error=$6, analyzed_at=$7
		WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		jobID, result.Report, result.VerdictContext, result.Backend,
		result.Success, result.ErrorMessage, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save analysis result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save analysis result: bug report %s not found", jobID)
	}
	return nil
}

func (r *ReportRepository) SaveFrames(ctx context.Context, jobID uuid.UUID, frames []entity.PersistedFrame) error {
	if len(frames) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO recording_frames (job_id, seq_index, timestamp_seconds, freeze_seconds, locator)
		VALUES ($1,$2,$3,$4,$5)`
	for _, f := range frames {
		batch.Queue(query, jobID, f.Index, f.Timestamp, f.FreezeSeconds, f.Locator)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range frames {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert frame record: %w", err)
		}
	}
	return nil
}
