package domain

import "errors"

var (
	// ErrConfiguration marks a missing or invalid required setting, such as an
	// absent font path.
	ErrConfiguration = errors.New("configuration error")
	// ErrFileProcessing marks an asset that is configured but cannot be read or
	// decoded, or a font that cannot be instantiated at the requested size.
	ErrFileProcessing = errors.New("file processing error")
	// ErrImageProcessing marks any other failure while measuring, compositing or
	// encoding a watermark.
	ErrImageProcessing = errors.New("image processing error")
	ErrFontRendering   = errors.New("font rendering error")

	ErrJobNotFound = errors.New("job not found")
)

const (
	KindConfiguration   = "configuration"
	KindFileProcessing  = "file_processing"
	KindFontRendering   = "font_rendering"
	KindImageProcessing = "image_processing"
	KindUnknown         = "unknown"
)

// ErrorKind returns the taxonomy label of err, or "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrFileProcessing):
		return KindFileProcessing
	case errors.Is(err, ErrFontRendering):
		return KindFontRendering
	case errors.Is(err, ErrImageProcessing):
		return KindImageProcessing
	default:
		return KindUnknown
	}
}
