package watermark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"watermark-generator/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// JobUsecase runs watermark rendering asynchronously: jobs are stored in the
// database, queued on the broker and rendered by workers into object storage.
type JobUsecase struct {
	*TaskProcessor
	producer taskProducer
}

func NewJobUsecase(renderer renderer, repo jobRepository, fileRepo fileRepository, producer taskProducer, logger *zlog.Zerolog) *JobUsecase {
	return &JobUsecase{
		TaskProcessor: NewTaskProcessor(renderer, repo, fileRepo, logger),
		producer:      producer,
	}
}

func (u *JobUsecase) Submit(ctx context.Context, req domain.WatermarkRequest) (*domain.Job, error) {
	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.New().String(),
		Status:    domain.StatusQueued,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.repo.Save(ctx, job); err != nil {
		u.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to save job")
		return nil, fmt.Errorf("%w: failed to save job: %w", ErrDatabaseError, err)
	}

	task := &domain.RenderTask{
		JobID:   job.ID,
		Request: req,
	}

	if err := u.producer.SendTask(ctx, task); err != nil {
		u.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to send task to Kafka")
		u.updateStatus(ctx, job.ID, domain.StatusFailed, "", "failed to queue job")
		return nil, fmt.Errorf("%w: failed to queue job: %w", ErrMessageQueueError, err)
	}

	u.logger.Info().
		Str("job_id", job.ID).
		Str("city", req.City).
		Str("location", req.Location).
		Msg("Watermark job queued")

	return job, nil
}

func (u *JobUsecase) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get job: %w", ErrDatabaseError, err)
	}
	return job, nil
}

// GetJobImage streams the rendered PNG of a completed job. The caller closes
// the reader.
func (u *JobUsecase) GetJobImage(ctx context.Context, id string) (io.ReadCloser, error) {
	job, err := u.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("%w: job %s is %s", ErrImageNotReady, id, job.Status)
	}

	reader, err := u.fileRepo.GetObject(ctx, job.ObjectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rendered image: %w", ErrStorageError, err)
	}

	return reader, nil
}

func renderedPath(jobID string) string {
	return domain.PathPrefixRendered + jobID + ".png"
}
