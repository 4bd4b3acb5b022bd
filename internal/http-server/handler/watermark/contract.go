package watermark

import (
	"context"
	"io"

	"watermark-generator/internal/domain"
)

type watermarkUsecase interface {
	Render(ctx context.Context, req domain.WatermarkRequest) ([]byte, error)
}

type jobUsecase interface {
	Submit(ctx context.Context, req domain.WatermarkRequest) (*domain.Job, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	GetJobImage(ctx context.Context, id string) (io.ReadCloser, error)
}
