package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/fundup7/bharatqa-backend/internal/domain/port"
	"github.com/fundup7/bharatqa-backend/internal/frameproc"
	"github.com/fundup7/bharatqa-backend/internal/infra/metrics"
	"github.com/fundup7/bharatqa-backend/internal/inference"
	"github.com/fundup7/bharatqa-backend/internal/prompt"
	"github.com/fundup7/bharatqa-backend/internal/report"
)

// AnalyzeRecordingUseCase drives one recording through the full pipeline:
// acquire, probe, sample, classify+filter, cap, prompt, infer, partition,
// persist. Every exit path removes the job's temporary workspace.
type AnalyzeRecordingUseCase struct {
	jobs         port.JobRepository
	reports      port.ReportRepository
	source       port.VideoSource
	prober       port.Prober
	sampler      port.FrameSampler
	filter       *frameproc.DedupFilter
	orchestrator *inference.Orchestrator
	frames       port.FrameStore
	publisher    port.StatusPublisher
	dlq          port.DLQPublisher
	notifier     port.FailureNotifier
	logger       *zap.Logger
	tempDir      string
	maxFrames    int
}

type AnalyzeRecordingConfig struct {
	TempDir   string
	MaxFrames int
}

func NewAnalyzeRecordingUseCase(
	jobs port.JobRepository,
	reports port.ReportRepository,
	source port.VideoSource,
	prober port.Prober,
	sampler port.FrameSampler,
	filter *frameproc.DedupFilter,
	orchestrator *inference.Orchestrator,
	frames port.FrameStore,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeRecordingConfig,
) *AnalyzeRecordingUseCase {
	return &AnalyzeRecordingUseCase{
		jobs:         jobs,
		reports:      reports,
		source:       source,
		prober:       prober,
		sampler:      sampler,
		filter:       filter,
		orchestrator: orchestrator,
		frames:       frames,
		publisher:    publisher,
		dlq:          dlq,
		notifier:     notifier,
		logger:       logger,
		tempDir:      cfg.TempDir,
		maxFrames:    cfg.MaxFrames,
	}
}

// Execute is the queue handler for one analysis request. A malformed message
// goes to the DLQ; everything else terminates in a persisted AnalysisResult,
// success or not, and never propagates an error back to the consumer.
func (uc *AnalyzeRecordingUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	var msg entity.AnalysisRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal request", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()))

	job, err := uc.jobs.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewRecordingJob(msg.JobID, msg.VideoURL, msg.VideoKey)
		if err := uc.jobs.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	job.MarkProcessing()
	if err := uc.jobs.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()
	totalTimer := time.Now()

	result := uc.runPipeline(ctx, job, msg, log)

	uc.persistOutcome(ctx, job, result, log)
	uc.publishStatus(ctx, job, log)

	if result.Success {
		metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	} else {
		metrics.JobsProcessedTotal.WithLabelValues("failed").Inc()
		locator := msg.VideoKey
		if locator == "" {
			locator = msg.VideoURL
		}
		_ = uc.notifier.NotifyFailure(ctx, job.ID.String(), locator, result.ErrorMessage)
	}
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

// runPipeline performs the analysis stages and always returns a terminal
// result. The workspace is removed on every return path.
func (uc *AnalyzeRecordingUseCase) runPipeline(
	ctx context.Context,
	job *entity.RecordingJob,
	msg entity.AnalysisRequestMessage,
	log *zap.Logger,
) *entity.AnalysisResult {
	tracer := otel.Tracer("analysis")
	ctx, span := tracer.Start(ctx, "AnalyzeRecording")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", job.ID.String()))

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return uc.fail(ctx, job, "acquiring", fmt.Errorf("create workdir: %w", err), log)
	}
	defer os.RemoveAll(workDir)

	// Acquire the recording and the bug-report text.
	uc.enterStage(ctx, job, "acquiring", log)
	videoPath := filepath.Join(workDir, "recording.mp4")
	err := uc.timed(ctx, tracer, "acquiring", func(ctx context.Context) error {
		loc := port.VideoLocator{URL: msg.VideoURL, ObjectKey: msg.VideoKey, AuthToken: msg.AuthToken}
		return uc.source.Fetch(ctx, loc, videoPath)
	})
	if err != nil {
		return uc.fail(ctx, job, "acquiring", err, log)
	}

	reportCtx, err := uc.reports.FetchContext(ctx, job.ID)
	if err != nil {
		return uc.fail(ctx, job, "acquiring", err, log)
	}

	// Probe duration.
	uc.enterStage(ctx, job, "probing", log)
	var duration float64
	err = uc.timed(ctx, tracer, "probing", func(ctx context.Context) error {
		duration, err = uc.prober.Duration(ctx, videoPath)
		return err
	})
	if err != nil {
		return uc.fail(ctx, job, "probing", err, log)
	}
	job.VideoDuration = duration

	// Sample frames. Zero usable frames switches to the text-only path
	// instead of failing the job.
	uc.enterStage(ctx, job, "sampling", log)
	framesDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return uc.fail(ctx, job, "sampling", err, log)
	}

	var samples []entity.FrameSample
	err = uc.timed(ctx, tracer, "sampling", func(ctx context.Context) error {
		samples, err = uc.sampler.Sample(ctx, videoPath, framesDir, duration)
		return err
	})
	textOnly := false
	if err != nil {
		if !errors.Is(err, entity.ErrNoFramesExtracted) {
			log.Warn("sampling failed for other than empty extraction", zap.Error(err))
		}
		log.Info("no usable frames, switching to text-only analysis", zap.Error(err))
		textOnly = true
	}
	metrics.FramesExtractedTotal.Add(float64(len(samples)))

	// Classify, deduplicate, cap.
	var capped []entity.FrameSample
	if !textOnly {
		uc.enterStage(ctx, job, "filtering", log)
		_ = uc.timed(ctx, tracer, "filtering", func(ctx context.Context) error {
			capped = uc.reduceFrames(samples, job, log)
			return nil
		})
		if len(capped) == 0 {
			log.Info("every frame filtered out, switching to text-only analysis")
			textOnly = true
		}
	}

	// Build the prompt.
	uc.enterStage(ctx, job, "prompting", log)
	var promptText string
	var imagePaths []string
	if textOnly {
		promptText = prompt.BuildTextOnly(reportCtx, duration)
	} else {
		tl := prompt.BuildTimeline(capped, duration)
		promptText = prompt.BuildMultimodal(reportCtx, tl)
		imagePaths = make([]string, len(capped))
		for i, f := range capped {
			imagePaths[i] = f.Path
		}
	}

	// Run inference down the backend priority list.
	uc.enterStage(ctx, job, "inferring", log)
	var rawText, backend string
	err = uc.timed(ctx, tracer, "inferring", func(ctx context.Context) error {
		rawText, backend, err = uc.orchestrator.Run(ctx, port.InferenceRequest{
			Prompt:     promptText,
			ImagePaths: imagePaths,
		})
		return err
	})
	if err != nil {
		return uc.fail(ctx, job, "inferring", err, log)
	}

	// Partition public report from internal verdict.
	uc.enterStage(ctx, job, "partitioning", log)
	publicReport, verdictCtx := report.Partition(rawText)

	// Upload retained frames. Upload failures are logged and skipped; they
	// never flip a successful analysis.
	uc.enterStage(ctx, job, "persisting", log)
	var persisted []entity.PersistedFrame
	if !textOnly {
		for i, f := range capped {
			locator, upErr := uc.frames.UploadFrame(ctx, job.ID.String(), i, f.Path)
			if upErr != nil {
				log.Error("frame upload failed, skipping frame",
					zap.Int("index", i), zap.Error(upErr))
				continue
			}
			persisted = append(persisted, entity.PersistedFrame{
				Index:         i,
				Timestamp:     f.Timestamp,
				FreezeSeconds: f.FreezeSeconds,
				Locator:       locator,
			})
		}
	}

	job.MarkCompleted(backend, len(capped), job.DuplicateCount, job.FreezeCount)
	log.Info("analysis completed",
		zap.String("backend", backend),
		zap.Int("frames", len(capped)),
		zap.Bool("text_only", textOnly),
	)
	return entity.SuccessResult(publicReport, verdictCtx, backend, persisted)
}

// reduceFrames runs classification, dark-frame removal, deduplication and the
// volume cap over the raw samples.
func (uc *AnalyzeRecordingUseCase) reduceFrames(samples []entity.FrameSample, job *entity.RecordingJob, log *zap.Logger) []entity.FrameSample {
	for i := range samples {
		label, err := frameproc.Classify(samples[i].Path)
		if err != nil {
			log.Warn("frame classification failed, treating as normal",
				zap.String("path", samples[i].Path), zap.Error(err))
			label = entity.LabelNormal
		}
		samples[i].Label = label
	}

	lit := frameproc.DropDark(samples)
	fr := uc.filter.Filter(lit)

	job.DuplicateCount = fr.Duplicates
	job.FreezeCount = fr.FreezeEvents
	metrics.DuplicatesCollapsedTotal.Add(float64(fr.Duplicates))
	metrics.FreezeEventsTotal.Add(float64(fr.FreezeEvents))

	log.Info("frames reduced",
		zap.Int("raw", len(samples)),
		zap.Int("dark_dropped", len(samples)-len(lit)),
		zap.Int("duplicates", fr.Duplicates),
		zap.Int("freeze_events", fr.FreezeEvents),
		zap.Int("unique", len(fr.Unique)),
	)
	return frameproc.Cap(fr.Unique, samples, uc.maxFrames)
}

func (uc *AnalyzeRecordingUseCase) fail(ctx context.Context, job *entity.RecordingJob, stage string, err error, log *zap.Logger) *entity.AnalysisResult {
	log.Error("pipeline stage failed", zap.String("stage", stage), zap.Error(err))
	job.CurrentStage = stage
	job.MarkFailed(err.Error())
	return entity.FailureResult(err.Error())
}

// persistOutcome writes the result and frame records back. Persistence errors
// are logged but never retroactively fail a completed analysis.
func (uc *AnalyzeRecordingUseCase) persistOutcome(ctx context.Context, job *entity.RecordingJob, result *entity.AnalysisResult, log *zap.Logger) {
	if err := uc.reports.SaveResult(ctx, job.ID, result); err != nil {
		log.Error("failed to save analysis result", zap.Error(err))
	}
	if len(result.Frames) > 0 {
		if err := uc.reports.SaveFrames(ctx, job.ID, result.Frames); err != nil {
			log.Error("failed to save frame records", zap.Error(err))
		}
	}
	if err := uc.jobs.Update(ctx, job); err != nil {
		log.Error("failed to update job record", zap.Error(err))
	}
}

func (uc *AnalyzeRecordingUseCase) publishStatus(ctx context.Context, job *entity.RecordingJob, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:          job.ID,
		Status:         job.Status,
		Backend:        job.Backend,
		FrameCount:     job.FrameCount,
		DuplicateCount: job.DuplicateCount,
		FreezeCount:    job.FreezeCount,
		Duration:       job.VideoDuration,
		ErrorMessage:   job.ErrorMessage,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}

func (uc *AnalyzeRecordingUseCase) enterStage(ctx context.Context, job *entity.RecordingJob, stage string, log *zap.Logger) {
	job.MarkStage(stage)
	if err := uc.jobs.Update(ctx, job); err != nil {
		log.Warn("failed to record stage", zap.String("stage", stage), zap.Error(err))
	}
}

// timed wraps one stage in a trace span and a duration observation.
func (uc *AnalyzeRecordingUseCase) timed(ctx context.Context, tracer trace.Tracer, stage string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, stage)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return err
}
