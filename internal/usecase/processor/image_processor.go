package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"

	"watermark-generator/internal/config"
	"watermark-generator/internal/domain"
	"watermark-generator/internal/usecase/processor/operations"

	"github.com/disintegration/imaging"
	"github.com/google/renameio/v2"
	"github.com/wb-go/wbf/zlog"
)

// ImageProcessor renders watermarks. The font and logos are loaded once and
// only read afterwards, so one processor serves concurrent callers.
type ImageProcessor struct {
	typeface    *operations.Typeface
	fontSize    int
	watermarker *operations.Watermarker
	logger      *zlog.Zerolog
}

func NewImageProcessor(cfg *config.Config, logger *zlog.Zerolog) (*ImageProcessor, error) {
	typeface, err := loadTypeface(cfg.Assets.FontPath)
	if err != nil {
		return nil, err
	}

	if _, err := typeface.Face(cfg.Layout.DefaultFontSize); err != nil {
		return nil, fmt.Errorf("%w: default font size: %w", domain.ErrFileProcessing, err)
	}

	logos := operations.Logos{
		Location:  loadLogo(cfg.Assets.LocationLogoPath, "location", logger),
		Signature: loadLogo(cfg.Assets.SignatureLogoPath, "signature", logger),
	}

	logger.Info().
		Str("font", cfg.Assets.FontPath).
		Int("font_size", cfg.Layout.DefaultFontSize).
		Int("canvas_width", cfg.Layout.CanvasWidth).
		Int("canvas_height", cfg.Layout.CanvasHeight).
		Msg("Image processor initialized")

	return &ImageProcessor{
		typeface:    typeface,
		fontSize:    cfg.Layout.DefaultFontSize,
		watermarker: operations.NewWatermarker(layoutFromConfig(cfg.Layout), logos),
		logger:      logger,
	}, nil
}

func layoutFromConfig(c config.LayoutConfig) operations.Layout {
	return operations.Layout{
		CanvasWidth:  c.CanvasWidth,
		CanvasHeight: c.CanvasHeight,
		Padding:      c.Padding,
		TextColor: color.NRGBA{
			R: uint8(c.TextColorR),
			G: uint8(c.TextColorG),
			B: uint8(c.TextColorB),
			A: uint8(c.TextColorA),
		},
		LocationSeparator:            c.LocationSeparator,
		CameraLensSeparator:          c.CameraLensSeparator,
		LocationLogoTextSpacing:      c.LocationLogoTextSpacing,
		LocationVerticalOffset:       c.LocationVerticalOffset,
		LocationTextHorizontalOffset: c.LocationTextHorizontalOffset,
		DefaultSignatureLogoWidth:    c.DefaultSignatureLogoWidth,
	}
}

// Render composes req and returns it PNG-encoded.
func (p *ImageProcessor) Render(ctx context.Context, req domain.WatermarkRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas, err := p.compose(req)
	if err != nil {
		return nil, err
	}

	return encode(canvas, imaging.PNG)
}

// Generate composes req and writes it to outputPath in the format implied by
// its extension. On failure nothing is left at outputPath.
func (p *ImageProcessor) Generate(ctx context.Context, req domain.WatermarkRequest, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	format, err := imaging.FormatFromFilename(outputPath)
	if err != nil {
		return fmt.Errorf("%w: output %s: %w", domain.ErrImageProcessing, outputPath, err)
	}

	dir := filepath.Dir(outputPath)
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: output directory %s does not exist", domain.ErrFileProcessing, dir)
	case err != nil:
		return fmt.Errorf("%w: output directory %s: %w", domain.ErrFileProcessing, dir, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", domain.ErrFileProcessing, dir)
	}

	canvas, err := p.compose(req)
	if err != nil {
		return err
	}

	data, err := encode(canvas, format)
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", domain.ErrFileProcessing, outputPath, err)
	}

	p.logger.Debug().Str("output", outputPath).Int("size", len(data)).Msg("Watermark written")
	return nil
}

func (p *ImageProcessor) compose(req domain.WatermarkRequest) (*image.RGBA, error) {
	face, err := p.face(req.FontSize)
	if err != nil {
		return nil, err
	}

	canvas, _, err := p.watermarker.Compose(face, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrImageProcessing, err)
	}

	return canvas, nil
}

// face builds a face for this call only; FontFace is not safe to share.
// A nil or zero requested size selects the configured default; a negative one
// is an ErrFileProcessing.
func (p *ImageProcessor) face(requested *int) (*operations.FontFace, error) {
	size := p.fontSize
	if requested != nil && *requested != 0 && *requested != p.fontSize {
		size = *requested
	}

	face, err := p.typeface.Face(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFileProcessing, err)
	}
	return face, nil
}

func encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s: %w", domain.ErrImageProcessing, format, err)
	}
	return buf.Bytes(), nil
}
