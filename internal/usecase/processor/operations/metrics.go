package operations

import (
	"fmt"
	"image"

	"watermark-generator/internal/domain"

	"github.com/golang/freetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TextBlock is a measured string. Width and Height are the tight ink bounds of
// the rendered glyph run, not the nominal line metrics of the font.
type TextBlock struct {
	Text   string
	Width  int
	Height int

	mask *image.Alpha
	ink  image.Rectangle
}

// Measure rasterizes text with face and returns its ink bounding box. An empty
// string, or one that draws no pixels, measures (0, 0).
func Measure(text string, face *FontFace) (TextBlock, error) {
	block := TextBlock{Text: text}
	if text == "" {
		return block, nil
	}

	mask, err := rasterize(text, face)
	if err != nil {
		return TextBlock{}, err
	}

	ink := inkBounds(mask)
	if ink.Empty() {
		return block, nil
	}

	block.Width = ink.Dx()
	block.Height = ink.Dy()
	block.mask = mask
	block.ink = ink
	return block, nil
}

// DrawAt composites the block with src so that the top-left corner of its ink
// box lands on pt.
func (b TextBlock) DrawAt(dst xdraw.Image, pt image.Point, src image.Image) {
	if b.mask == nil {
		return
	}
	r := image.Rectangle{Min: pt, Max: pt.Add(b.ink.Size())}
	xdraw.DrawMask(dst, r, src, image.Point{}, b.mask, b.ink.Min, xdraw.Over)
}

func rasterize(text string, face *FontFace) (*image.Alpha, error) {
	bounds, _ := font.BoundString(face.face, text)

	// The rasterizer clips glyphs that cross the left edge of the clip
	// rectangle, so the scratch mask gets a margin around the nominal bounds.
	margin := int(face.size/4) + 2
	rect := image.Rect(
		bounds.Min.X.Floor()-margin,
		bounds.Min.Y.Floor()-margin,
		bounds.Max.X.Ceil()+margin,
		bounds.Max.Y.Ceil()+margin,
	)
	mask := image.NewAlpha(rect)

	c := freetype.NewContext()
	c.SetDPI(dpi)
	c.SetFont(face.font)
	c.SetFontSize(face.size)
	c.SetHinting(font.HintingFull)
	c.SetClip(rect)
	c.SetDst(mask)
	c.SetSrc(image.Opaque)

	if _, err := c.DrawString(text, fixed.Point26_6{}); err != nil {
		return nil, fmt.Errorf("%w: failed to draw %q at %dpt: %w", domain.ErrFontRendering, text, face.Size(), err)
	}

	return mask, nil
}

func inkBounds(mask *image.Alpha) image.Rectangle {
	b := mask.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[(y-b.Min.Y)*mask.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[x-b.Min.X] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
