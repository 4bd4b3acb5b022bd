package watermark

import (
	"context"
	"fmt"

	"watermark-generator/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

// WatermarkUsecase is the synchronous call boundary around the renderer.
type WatermarkUsecase struct {
	renderer renderer
	logger   *zlog.Zerolog
}

func NewWatermarkUsecase(renderer renderer, logger *zlog.Zerolog) *WatermarkUsecase {
	return &WatermarkUsecase{
		renderer: renderer,
		logger:   logger,
	}
}

// Generate writes a watermark to outputPath and reports whether it succeeded.
// Failures are logged with their kind and never returned.
func (u *WatermarkUsecase) Generate(ctx context.Context, req domain.WatermarkRequest, outputPath string) bool {
	u.logger.Info().
		Str("city", req.City).
		Str("location", req.Location).
		Str("camera", req.Camera).
		Str("lens", req.Lens).
		Str("output", outputPath).
		Msg("Generating watermark")

	if err := u.renderer.Generate(ctx, req, outputPath); err != nil {
		u.logger.Error().
			Err(err).
			Str("kind", domain.ErrorKind(err)).
			Str("city", req.City).
			Str("location", req.Location).
			Str("camera", req.Camera).
			Str("lens", req.Lens).
			Str("output", outputPath).
			Msg("Watermark generation failed")
		return false
	}

	u.logger.Info().Str("output", outputPath).Msg("Watermark generated")
	return true
}

func (u *WatermarkUsecase) Render(ctx context.Context, req domain.WatermarkRequest) ([]byte, error) {
	data, err := u.renderer.Render(ctx, req)
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("kind", domain.ErrorKind(err)).
			Str("city", req.City).
			Str("location", req.Location).
			Msg("Watermark rendering failed")
		return nil, fmt.Errorf("failed to render watermark: %w", err)
	}

	u.logger.Debug().Int("size", len(data)).Msg("Watermark rendered")
	return data, nil
}
