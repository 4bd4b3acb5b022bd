package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"watermark-generator/internal/broker"
	kafka_impl "watermark-generator/internal/broker/kafka"
	"watermark-generator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type fakeConsumer struct {
	messages []*broker.Message
	// endStream closes the stream after the last message instead of
	// waiting for ctx.
	endStream bool

	mu        sync.Mutex
	committed []int64
}

func (c *fakeConsumer) Commit(_ context.Context, msg *broker.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = append(c.committed, msg.Offset)
	return nil
}

func (c *fakeConsumer) Start(ctx context.Context, out chan<- *broker.Message, _ retry.Strategy) {
	go func() {
		defer close(out)
		for _, msg := range c.messages {
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
		if !c.endStream {
			<-ctx.Done()
		}
	}()
}

func (c *fakeConsumer) Close() error { return nil }

func (c *fakeConsumer) committedOffsets() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.committed...)
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	failed    []string
	// failures is how many times a job fails before it succeeds; -1 fails
	// forever.
	failures map[string]int
	panicFor string
}

func (p *fakeProcessor) ProcessTask(_ context.Context, task *domain.RenderTask) error {
	if task.JobID == p.panicFor {
		panic("boom")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, task.JobID)

	switch n := p.failures[task.JobID]; {
	case n < 0:
		return errors.New("minio down")
	case n > 0:
		p.failures[task.JobID] = n - 1
		return errors.New("minio down")
	}
	return nil
}

func (p *fakeProcessor) FailTask(_ context.Context, task *domain.RenderTask, _ error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, task.JobID)
	return nil
}

func (p *fakeProcessor) attempts(jobID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, id := range p.processed {
		if id == jobID {
			n++
		}
	}
	return n
}

func (p *fakeProcessor) failedJobs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.failed...)
}

func taskMessage(t *testing.T, jobID string, offset int64) *broker.Message {
	t.Helper()

	value, err := kafka_impl.EncodeTask(&domain.RenderTask{
		JobID:   jobID,
		Request: domain.WatermarkRequest{City: "Guangzhou", Location: "Huangpu", Camera: "Leica Q2", Lens: "Summilux"},
	})
	require.NoError(t, err)

	return &broker.Message{Key: []byte(jobID), Value: value, Topic: domain.KafkaTopicJobs, Offset: offset}
}

func runWorker(t *testing.T, w *Worker) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	return cancel, done
}

func waitStopped(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
		return nil
	}
}

func TestWorkerCommitsHandledMessages(t *testing.T) {
	zlog.Init()

	consumer := &fakeConsumer{messages: []*broker.Message{
		taskMessage(t, "job-ok", 1),
		{Value: []byte("{not json"), Offset: 2},
		taskMessage(t, "job-broken", 3),
		taskMessage(t, "job-panic", 4),
		taskMessage(t, "job-ok-2", 5),
	}}
	processor := &fakeProcessor{
		failures: map[string]int{"job-broken": -1},
		panicFor: "job-panic",
	}

	w := NewWorker(consumer, processor, retry.Strategy{Attempts: 2, Delay: time.Millisecond, Backoff: 1}, 3, &zlog.Logger)
	cancel, done := runWorker(t, w)

	require.Eventually(t, func() bool {
		return len(consumer.committedOffsets()) == 5
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitStopped(t, done))

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, consumer.committedOffsets())
	assert.ElementsMatch(t, []string{"job-broken", "job-panic"}, processor.failedJobs())
	assert.Equal(t, 2, processor.attempts("job-broken"))
	assert.Equal(t, 1, processor.attempts("job-ok"))
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	zlog.Init()

	consumer := &fakeConsumer{messages: []*broker.Message{taskMessage(t, "job-transient", 3)}}
	processor := &fakeProcessor{failures: map[string]int{"job-transient": 1}}

	w := NewWorker(consumer, processor, retry.Strategy{Attempts: 3, Delay: time.Millisecond, Backoff: 1}, 1, &zlog.Logger)
	cancel, done := runWorker(t, w)

	require.Eventually(t, func() bool {
		return len(consumer.committedOffsets()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, waitStopped(t, done))

	assert.Equal(t, []int64{3}, consumer.committedOffsets())
	assert.Equal(t, 2, processor.attempts("job-transient"))
	assert.Empty(t, processor.failedJobs())
}

func TestWorkerRunStopsWhenStreamCloses(t *testing.T) {
	zlog.Init()

	consumer := &fakeConsumer{
		messages:  []*broker.Message{taskMessage(t, "job-ok", 1)},
		endStream: true,
	}
	processor := &fakeProcessor{}

	w := NewWorker(consumer, processor, retry.Strategy{Attempts: 1}, 2, &zlog.Logger)
	cancel, done := runWorker(t, w)
	defer cancel()

	assert.ErrorIs(t, waitStopped(t, done), ErrStreamClosed)
	assert.Equal(t, []int64{1}, consumer.committedOffsets())
}

func TestNewWorkerFloors(t *testing.T) {
	zlog.Init()

	w := NewWorker(&fakeConsumer{}, &fakeProcessor{}, retry.Strategy{}, 0, &zlog.Logger)
	assert.Equal(t, 1, w.concurrency)
	assert.Equal(t, 1, w.retries.Attempts)
}
