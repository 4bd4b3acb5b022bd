package operations

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const dpi = 72

// Typeface is a parsed TrueType font. It is never mutated after parsing and
// may be shared between goroutines; sized handles are created per call.
type Typeface struct {
	font *truetype.Font
}

func ParseTypeface(data []byte) (*Typeface, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return &Typeface{font: f}, nil
}

// FontFace is a typeface at one point size. A FontFace carries glyph buffers
// and must not be used by more than one goroutine at a time.
type FontFace struct {
	font *truetype.Font
	size float64
	face font.Face
}

func (t *Typeface) Face(size int) (*FontFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %d", size)
	}

	opts := &truetype.Options{
		Size:    float64(size),
		DPI:     dpi,
		Hinting: font.HintingFull,
	}

	return &FontFace{
		font: t.font,
		size: float64(size),
		face: truetype.NewFace(t.font, opts),
	}, nil
}

func (f *FontFace) Size() int {
	return int(f.size)
}
