package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/fundup7/bharatqa-backend/internal/domain/port"
	"github.com/fundup7/bharatqa-backend/internal/frameproc"
	"github.com/fundup7/bharatqa-backend/internal/inference"
	"github.com/fundup7/bharatqa-backend/internal/report"
)

type fakeJobs struct {
	store     map[uuid.UUID]*entity.RecordingJob
	created   int
	createErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{store: map[uuid.UUID]*entity.RecordingJob{}}
}

func (f *fakeJobs) Create(_ context.Context, job *entity.RecordingJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	f.store[job.ID] = job
	return nil
}

func (f *fakeJobs) Update(_ context.Context, job *entity.RecordingJob) error {
	f.store[job.ID] = job
	return nil
}

func (f *fakeJobs) FindByID(_ context.Context, id uuid.UUID) (*entity.RecordingJob, error) {
	job, ok := f.store[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

type fakeReports struct {
	context     *entity.ReportContext
	fetchErr    error
	savedResult *entity.AnalysisResult
	savedFrames []entity.PersistedFrame
}

func (f *fakeReports) FetchContext(_ context.Context, _ uuid.UUID) (*entity.ReportContext, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.context, nil
}

func (f *fakeReports) SaveResult(_ context.Context, _ uuid.UUID, result *entity.AnalysisResult) error {
	f.savedResult = result
	return nil
}

func (f *fakeReports) SaveFrames(_ context.Context, _ uuid.UUID, frames []entity.PersistedFrame) error {
	f.savedFrames = frames
	return nil
}

type fakeSource struct {
	err     error
	lastLoc port.VideoLocator
}

func (f *fakeSource) Fetch(_ context.Context, loc port.VideoLocator, destPath string) error {
	f.lastLoc = loc
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("video"), 0o644)
}

type fakeProber struct{ duration float64 }

func (f fakeProber) Duration(context.Context, string) (float64, error) { return f.duration, nil }

// fakeSampler writes real JPEG files so classification and deduplication run
// against decodable frames.
type fakeSampler struct {
	colors []color.RGBA
	err    error
}

func (f *fakeSampler) Sample(_ context.Context, _, outputDir string, _ float64) ([]entity.FrameSample, error) {
	if f.err != nil {
		return nil, f.err
	}
	samples := make([]entity.FrameSample, 0, len(f.colors))
	for i, c := range f.colors {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				img.Set(x, y, c)
			}
		}
		path := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.jpg", i))
		file, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 90}); err != nil {
			file.Close()
			return nil, err
		}
		file.Close()

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		samples = append(samples, entity.FrameSample{
			Index:     i,
			Timestamp: float64(2 + 3*i),
			Path:      path,
			Size:      info.Size(),
		})
	}
	return samples, nil
}

type fakeFrameStore struct {
	uploads int
	failAt  int
}

func newFakeFrameStore() *fakeFrameStore { return &fakeFrameStore{failAt: -1} }

func (f *fakeFrameStore) UploadFrame(_ context.Context, jobID string, index int, _ string) (string, error) {
	if index == f.failAt {
		return "", errors.New("upload refused")
	}
	f.uploads++
	return fmt.Sprintf("frames/%s/frame_%04d.jpg", jobID, index), nil
}

type fakePublisher struct{ messages [][]byte }

func (f *fakePublisher) PublishStatus(_ context.Context, msg []byte) error {
	f.messages = append(f.messages, msg)
	return nil
}

type fakeDLQ struct{ reasons []string }

func (f *fakeDLQ) PublishToDLQ(_ context.Context, _ []byte, reason string) error {
	f.reasons = append(f.reasons, reason)
	return nil
}

type fakeNotifier struct {
	jobIDs   []string
	locators []string
	errors   []string
}

func (f *fakeNotifier) NotifyFailure(_ context.Context, jobID, videoLocator, errorMsg string) error {
	f.jobIDs = append(f.jobIDs, jobID)
	f.locators = append(f.locators, videoLocator)
	f.errors = append(f.errors, errorMsg)
	return nil
}

type stubBackend struct {
	name    string
	text    string
	err     error
	lastReq port.InferenceRequest
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Complete(_ context.Context, req port.InferenceRequest) (string, error) {
	s.lastReq = req
	return s.text, s.err
}

type fixture struct {
	uc       *AnalyzeRecordingUseCase
	jobs     *fakeJobs
	reports  *fakeReports
	source   *fakeSource
	sampler  *fakeSampler
	frames   *fakeFrameStore
	pub      *fakePublisher
	dlq      *fakeDLQ
	notifier *fakeNotifier
	tempDir  string
}

func newFixture(t *testing.T, backends ...port.InferenceBackend) *fixture {
	t.Helper()
	logger := zap.NewNop()
	f := &fixture{
		jobs: newFakeJobs(),
		reports: &fakeReports{context: &entity.ReportContext{
			Narrative: "App freezes on the payment screen.",
			Telemetry: "Pixel 7, Android 14",
		}},
		source: &fakeSource{},
		sampler: &fakeSampler{colors: []color.RGBA{
			{200, 30, 30, 255},
			{30, 30, 200, 255},
			{30, 180, 80, 255},
		}},
		frames:   newFakeFrameStore(),
		pub:      &fakePublisher{},
		dlq:      &fakeDLQ{},
		notifier: &fakeNotifier{},
		tempDir:  t.TempDir(),
	}

	f.uc = NewAnalyzeRecordingUseCase(
		f.jobs,
		f.reports,
		f.source,
		fakeProber{duration: 60},
		f.sampler,
		frameproc.NewDedupFilter(90, logger),
		inference.NewOrchestrator(backends, time.Minute, logger),
		f.frames,
		f.pub,
		f.dlq,
		f.notifier,
		logger,
		AnalyzeRecordingConfig{TempDir: f.tempDir, MaxFrames: 50},
	)
	return f
}

func requestBody(t *testing.T, msg entity.AnalysisRequestMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func modelResponse() string {
	return "1. App overview: payment flow.\n4. Severity: major.\n\n" +
		report.VerdictDelimiter +
		"\napprove\nThe freeze is clearly visible across several frames."
}

func TestExecuteHappyPath(t *testing.T) {
	backend := &stubBackend{name: "gpt-4o", text: modelResponse()}
	f := newFixture(t, backend)
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/" + jobID.String() + ".mp4",
	}))
	require.NoError(t, err)

	require.NotNil(t, f.reports.savedResult)
	res := f.reports.savedResult
	assert.True(t, res.Success)
	assert.Equal(t, "gpt-4o", res.Backend)
	assert.Contains(t, res.Report, "payment flow")
	assert.NotContains(t, res.Report, report.VerdictDelimiter)
	assert.Contains(t, res.VerdictContext, "approve")

	require.Len(t, res.Frames, 3)
	for i, frame := range res.Frames {
		assert.Equal(t, i, frame.Index)
		assert.Contains(t, frame.Locator, jobID.String())
	}
	assert.Equal(t, res.Frames, f.reports.savedFrames)

	job := f.jobs.store[jobID]
	require.NotNil(t, job)
	assert.Equal(t, 1, f.jobs.created)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 3, job.FrameCount)
	assert.InDelta(t, 60, job.VideoDuration, 0.001)
	require.NotNil(t, job.CompletedAt)

	require.Len(t, f.pub.messages, 1)
	var status entity.AnalysisStatusMessage
	require.NoError(t, json.Unmarshal(f.pub.messages[0], &status))
	assert.Equal(t, entity.JobStatusCompleted, status.Status)
	assert.Equal(t, "gpt-4o", status.Backend)

	assert.Empty(t, f.notifier.jobIDs)
	assert.Len(t, backend.lastReq.ImagePaths, 3)

	entries, readErr := os.ReadDir(f.tempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "job workspace is removed after completion")
}

func TestExecuteMalformedMessageGoesToDLQ(t *testing.T) {
	f := newFixture(t, &stubBackend{name: "gpt-4o", text: "unused"})

	err := f.uc.Execute(context.Background(), []byte("{not json"))
	require.NoError(t, err, "a poison message must not be redelivered")

	require.Len(t, f.dlq.reasons, 1)
	assert.Contains(t, f.dlq.reasons[0], "unmarshal_error")
	assert.Zero(t, f.jobs.created)
	assert.Nil(t, f.reports.savedResult)
}

func TestExecuteDownloadFailure(t *testing.T) {
	f := newFixture(t, &stubBackend{name: "gpt-4o", text: "unused"})
	f.source.err = &entity.AcquisitionError{
		Locator:    "https://cdn.example.com/rec.mp4",
		StatusCode: 404,
		Err:        errors.New("not found"),
	}
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoURL: "https://cdn.example.com/rec.mp4",
	}))
	require.NoError(t, err)

	require.NotNil(t, f.reports.savedResult)
	assert.False(t, f.reports.savedResult.Success)
	assert.Contains(t, f.reports.savedResult.ErrorMessage, "404")
	assert.Empty(t, f.reports.savedResult.Frames)

	job := f.jobs.store[jobID]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusFailed, job.Status)

	require.Len(t, f.notifier.jobIDs, 1)
	assert.Equal(t, jobID.String(), f.notifier.jobIDs[0])
	assert.Equal(t, "https://cdn.example.com/rec.mp4", f.notifier.locators[0])
	assert.Contains(t, f.notifier.errors[0], "404")

	entries, readErr := os.ReadDir(f.tempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "job workspace is removed after failure")
}

func TestExecuteTextOnlyWhenNoFramesExtracted(t *testing.T) {
	backend := &stubBackend{name: "gpt-4o", text: modelResponse()}
	f := newFixture(t, backend)
	f.sampler.err = fmt.Errorf("%w: 15 timestamps attempted", entity.ErrNoFramesExtracted)
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/r.mp4",
	}))
	require.NoError(t, err)

	require.NotNil(t, f.reports.savedResult)
	assert.True(t, f.reports.savedResult.Success)
	assert.Empty(t, f.reports.savedResult.Frames)
	assert.Empty(t, f.reports.savedFrames)

	assert.Empty(t, backend.lastReq.ImagePaths)
	assert.Contains(t, backend.lastReq.Prompt, "no usable frames could be extracted")

	job := f.jobs.store[jobID]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Zero(t, job.FrameCount)
	assert.Zero(t, f.frames.uploads)
}

func TestExecuteAllBackendsFail(t *testing.T) {
	f := newFixture(t,
		&stubBackend{name: "gpt-4o", err: errors.New("rate limited")},
		&stubBackend{name: "gpt-4o-mini", err: errors.New("model overloaded")},
	)
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/r.mp4",
	}))
	require.NoError(t, err)

	require.NotNil(t, f.reports.savedResult)
	res := f.reports.savedResult
	assert.False(t, res.Success)
	assert.Empty(t, res.Backend)
	assert.Empty(t, res.Report)
	assert.Contains(t, res.ErrorMessage, "model overloaded", "the last backend's failure is surfaced")

	job := f.jobs.store[jobID]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	require.Len(t, f.notifier.jobIDs, 1)
}

func TestExecuteFrameUploadFailureIsTolerated(t *testing.T) {
	backend := &stubBackend{name: "gpt-4o", text: modelResponse()}
	f := newFixture(t, backend)
	f.frames.failAt = 1
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/r.mp4",
	}))
	require.NoError(t, err)

	require.NotNil(t, f.reports.savedResult)
	assert.True(t, f.reports.savedResult.Success)
	require.Len(t, f.reports.savedResult.Frames, 2)
	assert.Equal(t, 0, f.reports.savedResult.Frames[0].Index)
	assert.Equal(t, 2, f.reports.savedResult.Frames[1].Index)
}

func TestExecuteReusesExistingJobRecord(t *testing.T) {
	backend := &stubBackend{name: "gpt-4o", text: modelResponse()}
	f := newFixture(t, backend)
	jobID := uuid.New()
	f.jobs.store[jobID] = entity.NewRecordingJob(jobID, "", "recordings/r.mp4")

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/r.mp4",
	}))
	require.NoError(t, err)

	assert.Zero(t, f.jobs.created, "a re-delivered job updates the existing record")
	assert.Equal(t, entity.JobStatusCompleted, f.jobs.store[jobID].Status)
}

func TestExecuteDuplicateFramesCollapse(t *testing.T) {
	backend := &stubBackend{name: "gpt-4o", text: modelResponse()}
	f := newFixture(t, backend)
	// Four copies of an unchanged screen followed by one distinct screen.
	f.sampler.colors = []color.RGBA{
		{200, 30, 30, 255},
		{200, 30, 30, 255},
		{200, 30, 30, 255},
		{200, 30, 30, 255},
		{30, 30, 200, 255},
	}
	jobID := uuid.New()

	err := f.uc.Execute(context.Background(), requestBody(t, entity.AnalysisRequestMessage{
		JobID:    jobID,
		VideoKey: "recordings/r.mp4",
	}))
	require.NoError(t, err)

	job := f.jobs.store[jobID]
	require.NotNil(t, job)
	assert.Equal(t, 3, job.DuplicateCount)
	assert.Equal(t, 1, job.FreezeCount)
	assert.Len(t, backend.lastReq.ImagePaths, 3, "unique set below the evidence floor falls back to earliest raw frames")
}
