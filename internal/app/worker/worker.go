package worker

import (
	"context"
	"fmt"

	"watermark-generator/internal/app"
	kafka_impl "watermark-generator/internal/broker/kafka"
	"watermark-generator/internal/config"
	minio_repo "watermark-generator/internal/repository/watermark/cloud/minio"
	postgres_repo "watermark-generator/internal/repository/watermark/db/postgres"
	"watermark-generator/internal/usecase/processor"
	watermark_uc "watermark-generator/internal/usecase/watermark"
	"watermark-generator/internal/worker"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

// Worker is the background rendering process: Kafka in, MinIO and Postgres
// out.
type Worker struct {
	cfg      *config.Config
	logger   *zlog.Zerolog
	db       *dbpg.DB
	consumer *kafka_impl.ConsumerClient
	pool     *worker.Worker
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
	retries := cfg.DefaultRetryStrategy()

	imageProcessor, err := processor.NewImageProcessor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create image processor: %w", err)
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	fileRepo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
	if err != nil {
		db.Master.Close()
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	jobsRepo := postgres_repo.NewJobsRepository(db, retries)
	consumer := kafka_impl.NewConsumerClient(cfg)

	taskProcessor := watermark_uc.NewTaskProcessor(imageProcessor, jobsRepo, fileRepo, logger)

	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.JobsTopic).
		Str("group", cfg.Kafka.GroupID).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Worker configuration")

	return &Worker{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		consumer: consumer,
		pool:     worker.NewWorker(consumer, taskProcessor, retries, cfg.Worker.Concurrency, logger),
	}, nil
}

func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.HandleSignals(cancel, w.logger)

	runErr := w.pool.Run(ctx)

	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}
	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close consumer")
	}

	if runErr != nil {
		return fmt.Errorf("worker pool stopped: %w", runErr)
	}

	w.logger.Info().Msg("Worker stopped gracefully")
	return nil
}
