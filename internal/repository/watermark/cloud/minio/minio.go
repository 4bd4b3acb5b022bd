package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"watermark-generator/internal/config"
	"watermark-generator/internal/repository/watermark"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type FileRepository struct {
	client  *minio.Client
	bucket  string
	retries retry.Strategy
	logger  *zlog.Zerolog
}

func NewMinIORepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &FileRepository{
		client:  client,
		bucket:  cfg.Minio.Bucket,
		retries: retries,
		logger:  logger,
	}, nil
}

func (r *FileRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("%w: failed to check bucket %s: %w", watermark.ErrStorageError, r.bucket, err)
	}
	if exists {
		return nil
	}

	if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: failed to create bucket %s: %w", watermark.ErrStorageError, r.bucket, err)
	}

	r.logger.Info().Str("bucket", r.bucket).Msg("Bucket created")
	return nil
}

// SaveRendered uploads a rendered image. Each attempt reads data from the
// start, so a failed upload can be replayed.
func (r *FileRepository) SaveRendered(ctx context.Context, path string, data []byte, contentType string) error {
	err := retry.DoContext(ctx, r.retries, func() error {
		_, err := r.client.PutObject(ctx, r.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload %s: %w", watermark.ErrStorageError, path, err)
	}

	r.logger.Debug().Str("path", path).Int("size", len(data)).Msg("Rendered image uploaded")
	return nil
}

func (r *FileRepository) GetObject(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %w", watermark.ErrStorageError, path, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the caller
	// starts streaming.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == minio.NoSuchKey {
			return nil, fmt.Errorf("%w: %s", watermark.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %w", watermark.ErrStorageError, path, err)
	}

	return obj, nil
}

func (r *FileRepository) DeleteObject(ctx context.Context, path string) error {
	if err := r.client.RemoveObject(ctx, r.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", watermark.ErrStorageError, path, err)
	}
	return nil
}
