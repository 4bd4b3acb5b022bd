package watermark

import (
	"errors"

	repoWatermark "watermark-generator/internal/repository/watermark"
)

var (
	ErrJobNotFound       = repoWatermark.ErrJobNotFound
	ErrImageNotReady     = errors.New("rendered image is not ready")
	ErrStorageError      = errors.New("storage error")
	ErrDatabaseError     = errors.New("database error")
	ErrMessageQueueError = errors.New("message queue error")
)
