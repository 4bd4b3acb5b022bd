package watermark

import (
	"errors"

	"watermark-generator/internal/domain"
)

var (
	ErrJobNotFound   = domain.ErrJobNotFound
	ErrFileNotFound  = errors.New("file not found")
	ErrStorageError  = errors.New("storage error")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidStatus = errors.New("invalid job status")
)
