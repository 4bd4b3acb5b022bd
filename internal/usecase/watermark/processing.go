package watermark

import (
	"context"
	"errors"
	"fmt"

	"watermark-generator/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

// TaskProcessor renders queued jobs into object storage. It is the part of
// the job flow a worker needs; it never publishes tasks.
type TaskProcessor struct {
	renderer renderer
	repo     jobRepository
	fileRepo fileRepository
	logger   *zlog.Zerolog
}

func NewTaskProcessor(renderer renderer, repo jobRepository, fileRepo fileRepository, logger *zlog.Zerolog) *TaskProcessor {
	return &TaskProcessor{
		renderer: renderer,
		repo:     repo,
		fileRepo: fileRepo,
		logger:   logger,
	}
}

// ProcessTask renders a queued job and stores the result. A rendering failure
// is final: the job is marked failed and nil is returned. A returned error is
// an infrastructure failure; the caller may retry the task and should call
// FailTask once it gives up.
func (p *TaskProcessor) ProcessTask(ctx context.Context, task *domain.RenderTask) error {
	job, err := p.repo.GetByID(ctx, task.JobID)
	if errors.Is(err, ErrJobNotFound) {
		p.logger.Warn().Str("job_id", task.JobID).Msg("Task for unknown job, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to get job: %w", ErrDatabaseError, err)
	}

	if job.Status.Done() {
		p.logger.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("Job already finished, skipping")
		return nil
	}

	if err := p.repo.UpdateStatus(ctx, job.ID, domain.StatusProcessing, "", ""); err != nil {
		return fmt.Errorf("%w: failed to mark job processing: %w", ErrDatabaseError, err)
	}

	data, err := p.renderer.Render(ctx, task.Request)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("kind", domain.ErrorKind(err)).
			Msg("Watermark job failed")
		if err := p.repo.UpdateStatus(ctx, job.ID, domain.StatusFailed, "", err.Error()); err != nil {
			return fmt.Errorf("%w: failed to mark job failed: %w", ErrDatabaseError, err)
		}
		return nil
	}

	path := renderedPath(job.ID)
	if err := p.fileRepo.SaveRendered(ctx, path, data, domain.ContentTypePNG); err != nil {
		return fmt.Errorf("%w: failed to save rendered image: %w", ErrStorageError, err)
	}

	if err := p.repo.UpdateStatus(ctx, job.ID, domain.StatusCompleted, path, ""); err != nil {
		// The job does not point at the object, so nothing would ever read it.
		if delErr := p.fileRepo.DeleteObject(ctx, path); delErr != nil {
			p.logger.Warn().Err(delErr).Str("job_id", job.ID).Str("path", path).Msg("Failed to remove orphaned image")
		}
		return fmt.Errorf("%w: failed to mark job completed: %w", ErrDatabaseError, err)
	}

	p.logger.Info().
		Str("job_id", job.ID).
		Str("path", path).
		Int("size", len(data)).
		Msg("Watermark job completed")

	return nil
}

// FailTask marks the task's job failed with cause after processing was given
// up. Finished and unknown jobs are left alone.
func (p *TaskProcessor) FailTask(ctx context.Context, task *domain.RenderTask, cause error) error {
	job, err := p.repo.GetByID(ctx, task.JobID)
	if errors.Is(err, ErrJobNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to get job: %w", ErrDatabaseError, err)
	}

	if job.Status.Done() {
		return nil
	}

	if err := p.repo.UpdateStatus(ctx, job.ID, domain.StatusFailed, "", cause.Error()); err != nil {
		return fmt.Errorf("%w: failed to mark job failed: %w", ErrDatabaseError, err)
	}

	p.logger.Warn().Err(cause).Str("job_id", job.ID).Msg("Watermark job abandoned")
	return nil
}

func (p *TaskProcessor) updateStatus(ctx context.Context, id string, status domain.JobStatus, objectPath, errMsg string) {
	if err := p.repo.UpdateStatus(ctx, id, status, objectPath, errMsg); err != nil {
		p.logger.Error().Err(err).Str("job_id", id).Str("status", string(status)).Msg("Failed to update job status")
	}
}
