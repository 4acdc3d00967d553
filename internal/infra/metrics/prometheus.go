package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bharatqa_analysis_jobs_total",
		Help: "Total recording analysis jobs, by terminal status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bharatqa_analysis_stage_duration_seconds",
		Help:    "Duration of each analysis pipeline stage",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bharatqa_analysis_frames_extracted_total",
		Help: "Total frames extracted across all jobs",
	})

	DuplicatesCollapsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bharatqa_analysis_duplicates_collapsed_total",
		Help: "Total near-identical frames collapsed by deduplication",
	})

	FreezeEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bharatqa_analysis_freeze_events_total",
		Help: "Total freeze events detected across all jobs",
	})

	BackendAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bharatqa_analysis_backend_attempts_total",
		Help: "Inference backend attempts, by backend and outcome",
	}, []string{"backend", "outcome"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bharatqa_analysis_active_workers",
		Help: "Workers currently running an analysis job",
	})
)
