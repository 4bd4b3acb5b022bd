package watermark

import (
	"context"
	"io"

	"watermark-generator/internal/domain"
)

type renderer interface {
	Render(ctx context.Context, req domain.WatermarkRequest) ([]byte, error)
	Generate(ctx context.Context, req domain.WatermarkRequest, outputPath string) error
}

type jobRepository interface {
	Save(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, objectPath, errMsg string) error
}

type fileRepository interface {
	SaveRendered(ctx context.Context, path string, data []byte, contentType string) error
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, path string) error
}

type taskProducer interface {
	SendTask(ctx context.Context, task *domain.RenderTask) error
}
