package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/fundup7/bharatqa-backend/internal/frameproc"
	"github.com/fundup7/bharatqa-backend/internal/infra/acquire"
	"github.com/fundup7/bharatqa-backend/internal/infra/config"
	"github.com/fundup7/bharatqa-backend/internal/infra/email"
	"github.com/fundup7/bharatqa-backend/internal/infra/ffmpeg"
	"github.com/fundup7/bharatqa-backend/internal/infra/metrics"
	miniostorage "github.com/fundup7/bharatqa-backend/internal/infra/minio"
	openaiinfra "github.com/fundup7/bharatqa-backend/internal/infra/openai"
	"github.com/fundup7/bharatqa-backend/internal/infra/postgres"
	"github.com/fundup7/bharatqa-backend/internal/infra/rabbitmq"
	"github.com/fundup7/bharatqa-backend/internal/infra/tracing"
	"github.com/fundup7/bharatqa-backend/internal/inference"
	"github.com/fundup7/bharatqa-backend/internal/usecase"
	"github.com/fundup7/bharatqa-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting bharatqa analysis worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	// Object storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:    cfg.MinIOEndpoint,
		AccessKey:   cfg.MinIOAccessKey,
		SecretKey:   cfg.MinIOSecretKey,
		UseSSL:      cfg.MinIOUseSSL,
		VideoBucket: cfg.MinIOVideoBucket,
		FrameBucket: cfg.MinIOFrameBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Pipeline components
	jobRepo := postgres.NewJobRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	source := acquire.NewSource(storage, time.Duration(cfg.DownloadTimeoutSec)*time.Second)
	prober := ffmpeg.NewProber(nil)
	sampler := ffmpeg.NewSampler(nil, ffmpeg.SamplerConfig{
		Width:         cfg.FrameWidth,
		Height:        cfg.FrameHeight,
		Workers:       cfg.ExtractWorkers,
		MinFrameBytes: int64(cfg.MinFrameBytes),
	}, log)
	filter := frameproc.NewDedupFilter(cfg.SimilarityThreshold, log)
	backends := openaiinfra.NewBackends(openaiinfra.ClientConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	}, cfg.Backends)
	orchestrator := inference.NewOrchestrator(backends, time.Duration(cfg.InferenceTimeoutSec)*time.Second, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.ModeratorsTo, log)

	uc := usecase.NewAnalyzeRecordingUseCase(
		jobRepo, reportRepo, source, prober, sampler,
		filter, orchestrator, storage,
		statusPub, dlqPub, notifier,
		log,
		usecase.AnalyzeRecordingConfig{
			TempDir:   cfg.TempDir,
			MaxFrames: cfg.MaxFrames,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:          cfg.RabbitMQURL,
		RequestQueue: cfg.RabbitMQRequestQueue,
		StatusQueue:  cfg.RabbitMQStatusQueue,
		DLQ:          cfg.RabbitMQDLQ,
		Exchange:     cfg.RabbitMQExchange,
		Prefetch:     cfg.RabbitMQPrefetch,
		WorkerCount:  cfg.WorkerCount,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("bharatqa analysis worker started, consuming requests")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("bharatqa analysis worker stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
