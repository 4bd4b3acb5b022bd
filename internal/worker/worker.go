package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"watermark-generator/internal/broker"
	kafka_impl "watermark-generator/internal/broker/kafka"
	"watermark-generator/internal/domain"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// ErrStreamClosed is returned by Run when the consumer stops delivering
// messages before the context is done.
var ErrStreamClosed = errors.New("message stream closed")

type taskProcessor interface {
	ProcessTask(ctx context.Context, task *domain.RenderTask) error
	FailTask(ctx context.Context, task *domain.RenderTask, cause error) error
}

// Worker renders queued watermark jobs with a fixed number of goroutines.
type Worker struct {
	consumer    broker.Consumer
	processor   taskProcessor
	retries     retry.Strategy
	logger      *zlog.Zerolog
	concurrency int
	wg          sync.WaitGroup
}

func NewWorker(consumer broker.Consumer, processor taskProcessor, retries retry.Strategy, concurrency int, logger *zlog.Zerolog) *Worker {
	// Every task is tried at least once.
	retries.Attempts = max(retries.Attempts, 1)

	return &Worker{
		consumer:    consumer,
		processor:   processor,
		retries:     retries,
		logger:      logger,
		concurrency: max(concurrency, 1),
	}
}

// Run consumes tasks until ctx is done, then waits for in-flight tasks. If
// the consumer closes the stream first, Run returns ErrStreamClosed so the
// process can exit and be restarted.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting worker")

	// The consumer owns the channel and closes it when its stream ends.
	messages := make(chan *broker.Message, w.concurrency*2)
	w.consumer.Start(ctx, messages, w.retries)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, id, messages)
		}(i)
	}

	w.logger.Info().Msg("Worker started successfully")
	w.wg.Wait()

	if ctx.Err() == nil {
		w.logger.Error().Msg("Message stream closed, stopping worker")
		return ErrStreamClosed
	}

	w.logger.Info().Msg("Worker stopped")
	return nil
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan *broker.Message) {
	w.logger.Debug().Int("worker_id", id).Msg("Worker goroutine started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker goroutine stopping")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			w.handleMessage(ctx, id, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, id int, msg *broker.Message) {
	startTime := time.Now()

	task, err := kafka_impl.DecodeTask(msg.Value)
	if err != nil {
		// Redelivering a malformed task cannot succeed.
		w.logger.Error().
			Err(err).
			Int("worker_id", id).
			Int64("offset", msg.Offset).
			Str("message", string(msg.Value)).
			Msg("Dropping malformed task")
		w.commit(ctx, id, msg)
		return
	}

	err = retry.DoContext(ctx, w.retries, func() error {
		return w.safeProcessTask(ctx, id, task)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Shutting down; the task is redelivered after restart.
			w.logger.Warn().
				Err(err).
				Int("worker_id", id).
				Str("job_id", task.JobID).
				Int64("offset", msg.Offset).
				Msg("Task interrupted")
			return
		}

		w.logger.Error().
			Err(err).
			Int("worker_id", id).
			Str("job_id", task.JobID).
			Int64("offset", msg.Offset).
			Int("attempts", w.retries.Attempts).
			Msg("Failed to process task, giving up")

		// Later commits move the group offset past this message, so the job
		// is closed here instead of waiting for a redelivery.
		if err := w.processor.FailTask(ctx, task, err); err != nil {
			w.logger.Error().
				Err(err).
				Int("worker_id", id).
				Str("job_id", task.JobID).
				Msg("Failed to mark job failed")
		}
	}

	if w.commit(ctx, id, msg) {
		w.logger.Debug().
			Int("worker_id", id).
			Str("job_id", task.JobID).
			Int64("offset", msg.Offset).
			Dur("duration", time.Since(startTime)).
			Msg("Task committed")
	}
}

func (w *Worker) commit(ctx context.Context, id int, msg *broker.Message) bool {
	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Error().
			Err(err).
			Int("worker_id", id).
			Int64("offset", msg.Offset).
			Msg("Failed to commit message")
		return false
	}
	return true
}

func (w *Worker) safeProcessTask(ctx context.Context, workerID int, task *domain.RenderTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Str("job_id", task.JobID).
				Msg("Panic recovered while processing task")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processor.ProcessTask(ctx, task)
}
