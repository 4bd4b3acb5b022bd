package watermark

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"watermark-generator/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobsFixture struct {
	renderer *fakeRenderer
	jobs     *fakeJobs
	files    *fakeFiles
	producer *fakeProducer
	usecase  *JobUsecase
}

func newJobsFixture() *jobsFixture {
	f := &jobsFixture{
		renderer: &fakeRenderer{data: []byte("rendered")},
		jobs:     newFakeJobs(),
		files:    newFakeFiles(),
		producer: &fakeProducer{},
	}
	f.usecase = NewJobUsecase(f.renderer, f.jobs, f.files, f.producer, testLogger())
	return f
}

func TestSubmit(t *testing.T) {
	f := newJobsFixture()

	job, err := f.usecase.Submit(context.Background(), testRequest())
	require.NoError(t, err)

	_, err = uuid.Parse(job.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, job.Status)
	assert.Equal(t, testRequest(), job.Request)

	require.Len(t, f.producer.tasks, 1)
	assert.Equal(t, job.ID, f.producer.tasks[0].JobID)
	assert.Equal(t, testRequest(), f.producer.tasks[0].Request)

	stored, err := f.usecase.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, stored.Status)
}

func TestSubmitSaveFailure(t *testing.T) {
	f := newJobsFixture()
	f.jobs.saveErr = errors.New("connection refused")

	job, err := f.usecase.Submit(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrDatabaseError)
	assert.Nil(t, job)
	assert.Empty(t, f.producer.tasks)
}

func TestSubmitPublishFailureMarksJobFailed(t *testing.T) {
	f := newJobsFixture()
	f.producer.err = errors.New("broker unavailable")

	job, err := f.usecase.Submit(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrMessageQueueError)
	assert.Nil(t, job)

	require.Len(t, f.jobs.updates, 1)
	assert.Equal(t, domain.StatusFailed, f.jobs.updates[0].status)
}

func TestGetJobNotFound(t *testing.T) {
	f := newJobsFixture()

	_, err := f.usecase.GetJob(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrJobNotFound)

	f.jobs.getErr = errors.New("timeout")
	_, err = f.usecase.GetJob(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrDatabaseError)
}

func TestProcessTask(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	job, err := f.usecase.Submit(ctx, testRequest())
	require.NoError(t, err)

	_, err = f.usecase.GetJobImage(ctx, job.ID)
	assert.ErrorIs(t, err, ErrImageNotReady)

	require.NoError(t, f.usecase.ProcessTask(ctx, f.producer.tasks[0]))

	stored, err := f.usecase.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, "watermarks/"+job.ID+".png", stored.ObjectPath)

	reader, err := f.usecase.GetJobImage(ctx, job.ID)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "rendered", string(data))

	statuses := []domain.JobStatus{}
	for _, u := range f.jobs.updates {
		statuses = append(statuses, u.status)
	}
	assert.Equal(t, []domain.JobStatus{domain.StatusProcessing, domain.StatusCompleted}, statuses)
}

func TestProcessTaskRenderFailureIsFinal(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	job, err := f.usecase.Submit(ctx, testRequest())
	require.NoError(t, err)

	f.renderer.err = fmt.Errorf("%w: invalid font size -1", domain.ErrFileProcessing)
	require.NoError(t, f.usecase.ProcessTask(ctx, f.producer.tasks[0]))

	stored, err := f.usecase.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Contains(t, stored.Error, "invalid font size")
	assert.Empty(t, f.files.objects)
}

func TestProcessTaskStorageFailureCanBeReprocessed(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	job, err := f.usecase.Submit(ctx, testRequest())
	require.NoError(t, err)

	f.files.saveErr = errors.New("minio down")
	err = f.usecase.ProcessTask(ctx, f.producer.tasks[0])
	assert.ErrorIs(t, err, ErrStorageError)

	stored, err := f.usecase.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	f.files.saveErr = nil
	require.NoError(t, f.usecase.ProcessTask(ctx, f.producer.tasks[0]))
	assert.Len(t, f.files.objects, 1)
}

func TestProcessTaskRemovesImageWhenCompletionFails(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	job, err := f.usecase.Submit(ctx, testRequest())
	require.NoError(t, err)

	f.jobs.updateErrs = map[domain.JobStatus]error{domain.StatusCompleted: errors.New("connection reset")}
	err = f.usecase.ProcessTask(ctx, f.producer.tasks[0])
	assert.ErrorIs(t, err, ErrDatabaseError)

	assert.Equal(t, []string{"watermarks/" + job.ID + ".png"}, f.files.deleted)
	assert.Empty(t, f.files.objects)

	t.Run("delete failure keeps the database error", func(t *testing.T) {
		f.files.deleteErr = errors.New("minio down")
		err := f.usecase.ProcessTask(ctx, f.producer.tasks[0])
		assert.ErrorIs(t, err, ErrDatabaseError)
		assert.Len(t, f.files.deleted, 2)
	})
}

func TestFailTask(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	job, err := f.usecase.Submit(ctx, testRequest())
	require.NoError(t, err)
	task := f.producer.tasks[0]

	require.NoError(t, f.usecase.FailTask(ctx, task, errors.New("minio down")))

	stored, err := f.usecase.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, "minio down", stored.Error)

	t.Run("finished job is left alone", func(t *testing.T) {
		require.NoError(t, f.usecase.FailTask(ctx, task, errors.New("again")))
		assert.Len(t, f.jobs.updates, 1)
	})

	t.Run("unknown job", func(t *testing.T) {
		unknown := &domain.RenderTask{JobID: uuid.New().String()}
		assert.NoError(t, f.usecase.FailTask(ctx, unknown, errors.New("minio down")))
	})

	t.Run("database failure", func(t *testing.T) {
		f.jobs.getErr = errors.New("timeout")
		defer func() { f.jobs.getErr = nil }()

		assert.ErrorIs(t, f.usecase.FailTask(ctx, task, errors.New("minio down")), ErrDatabaseError)
	})
}

func TestTaskProcessorWithoutProducer(t *testing.T) {
	jobs := newFakeJobs()
	files := newFakeFiles()
	processor := NewTaskProcessor(&fakeRenderer{data: []byte("rendered")}, jobs, files, testLogger())

	job := &domain.Job{ID: uuid.New().String(), Status: domain.StatusQueued, Request: testRequest()}
	require.NoError(t, jobs.Save(context.Background(), job))

	require.NoError(t, processor.ProcessTask(context.Background(), &domain.RenderTask{JobID: job.ID, Request: job.Request}))
	assert.Equal(t, domain.StatusCompleted, jobs.jobs[job.ID].Status)
	assert.Contains(t, files.objects, "watermarks/"+job.ID+".png")
}

func TestProcessTaskSkips(t *testing.T) {
	f := newJobsFixture()
	ctx := context.Background()

	t.Run("unknown job", func(t *testing.T) {
		task := &domain.RenderTask{JobID: uuid.New().String(), Request: testRequest()}
		assert.NoError(t, f.usecase.ProcessTask(ctx, task))
		assert.Empty(t, f.renderer.requests)
	})

	t.Run("finished job", func(t *testing.T) {
		_, err := f.usecase.Submit(ctx, testRequest())
		require.NoError(t, err)
		task := f.producer.tasks[0]

		require.NoError(t, f.usecase.ProcessTask(ctx, task))
		require.NoError(t, f.usecase.ProcessTask(ctx, task))
		assert.Len(t, f.renderer.requests, 1)
	})

	t.Run("database failure", func(t *testing.T) {
		f.jobs.getErr = errors.New("timeout")
		defer func() { f.jobs.getErr = nil }()

		err := f.usecase.ProcessTask(ctx, f.producer.tasks[0])
		assert.ErrorIs(t, err, ErrDatabaseError)
	})
}
