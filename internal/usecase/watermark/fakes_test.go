package watermark

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"watermark-generator/internal/domain"
	repoWatermark "watermark-generator/internal/repository/watermark"

	"github.com/wb-go/wbf/zlog"
)

func testLogger() *zlog.Zerolog {
	zlog.Init()
	return &zlog.Logger
}

type fakeRenderer struct {
	data []byte
	err  error

	mu       sync.Mutex
	requests []domain.WatermarkRequest
}

func (f *fakeRenderer) Render(_ context.Context, req domain.WatermarkRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *fakeRenderer) Generate(_ context.Context, req domain.WatermarkRequest, outputPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, f.data, 0o644)
}

type statusUpdate struct {
	status     domain.JobStatus
	objectPath string
	errMsg     string
}

type fakeJobs struct {
	mu      sync.Mutex
	jobs    map[string]*domain.Job
	updates []statusUpdate
	saveErr error
	getErr  error
	// updateErrs fails UpdateStatus for the given target statuses.
	updateErrs map[domain.JobStatus]error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*domain.Job)}
}

func (f *fakeJobs) Save(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	stored := *job
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, repoWatermark.ErrJobNotFound
	}
	out := *job
	return &out, nil
}

func (f *fakeJobs) UpdateStatus(_ context.Context, id string, status domain.JobStatus, objectPath, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErrs[status]; err != nil {
		return err
	}
	job, ok := f.jobs[id]
	if !ok {
		return repoWatermark.ErrJobNotFound
	}
	job.Status = status
	job.ObjectPath = objectPath
	job.Error = errMsg
	f.updates = append(f.updates, statusUpdate{status: status, objectPath: objectPath, errMsg: errMsg})
	return nil
}

type fakeFiles struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: make(map[string][]byte)}
}

func (f *fakeFiles) SaveRendered(_ context.Context, path string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.objects[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeFiles) GetObject(_ context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	if !ok {
		return nil, repoWatermark.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFiles) DeleteObject(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, path)
	return nil
}

type fakeProducer struct {
	mu    sync.Mutex
	tasks []*domain.RenderTask
	err   error
}

func (f *fakeProducer) SendTask(_ context.Context, task *domain.RenderTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}
