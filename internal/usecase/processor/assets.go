package processor

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"watermark-generator/internal/domain"
	"watermark-generator/internal/usecase/processor/operations"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
)

func loadTypeface(path string) (*operations.Typeface, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: font path is not set", domain.ErrConfiguration)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: font file %s does not exist", domain.ErrConfiguration, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read font %s: %w", domain.ErrFileProcessing, path, err)
	}

	typeface, err := operations.ParseTypeface(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFileProcessing, path, err)
	}

	return typeface, nil
}

// loadLogo decodes an optional logo. Any failure leaves the slot empty.
func loadLogo(path, slot string, logger *zlog.Zerolog) image.Image {
	if path == "" {
		logger.Debug().Str("slot", slot).Msg("Logo not configured")
		return nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Str("slot", slot).Str("path", path).Msg("Logo file not found, drawing without it")
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Str("slot", slot).Str("path", path).Msg("Failed to load logo, drawing without it")
		return nil
	}

	logger.Info().
		Str("slot", slot).
		Str("path", path).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Logo loaded")

	return img
}
