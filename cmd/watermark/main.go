package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"watermark-generator/internal/config"
	"watermark-generator/internal/domain"
	"watermark-generator/internal/usecase/processor"
	watermark_uc "watermark-generator/internal/usecase/watermark"

	"github.com/wb-go/wbf/zlog"
)

type options struct {
	configPath     string
	city           string
	location       string
	camera         string
	lens           string
	output         string
	fontSize       int
	signatureWidth int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to the .env config (default $CONFIG_PATH or "+domain.DefaultConfigPath+")")
	flag.StringVar(&opts.city, "city", "", "city name (default DEFAULT_CITY)")
	flag.StringVar(&opts.location, "location", "", "location name (default DEFAULT_LOCATION)")
	flag.StringVar(&opts.camera, "camera", "", "camera model (default DEFAULT_CAMERA)")
	flag.StringVar(&opts.lens, "lens", "", "lens model (default DEFAULT_LENS)")
	flag.StringVar(&opts.output, "out", "watermark.png", "output image path; the extension picks the format")
	flag.IntVar(&opts.fontSize, "font-size", 0, "font size in points (default DEFAULT_FONT_SIZE)")
	flag.IntVar(&opts.signatureWidth, "signature-width", 0, "signature logo width in pixels (default DEFAULT_SIGNATURE_LOGO_WIDTH)")
	flag.Parse()

	zlog.Init()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	imageProcessor, err := processor.NewImageProcessor(cfg, &zlog.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize (%s): %v\n", domain.ErrorKind(err), err)
		os.Exit(1)
	}

	usecase := watermark_uc.NewWatermarkUsecase(imageProcessor, &zlog.Logger)
	if !usecase.Generate(context.Background(), buildRequest(opts, cfg.Defaults), opts.output) {
		os.Exit(1)
	}

	fmt.Printf("watermark written to %s\n", opts.output)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.MustLoad()
	}
	return config.Load(path)
}

// buildRequest fills unset flags from the configured defaults. Zero sizes
// fall back to the layout defaults.
func buildRequest(opts options, defaults config.DefaultsConfig) domain.WatermarkRequest {
	req := domain.WatermarkRequest{
		City:     orDefault(opts.city, defaults.City),
		Location: orDefault(opts.location, defaults.Location),
		Camera:   orDefault(opts.camera, defaults.Camera),
		Lens:     orDefault(opts.lens, defaults.Lens),
	}

	if opts.fontSize != 0 {
		size := opts.fontSize
		req.FontSize = &size
	}
	if opts.signatureWidth != 0 {
		width := opts.signatureWidth
		req.SignatureLogoWidth = &width
	}

	return req
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
