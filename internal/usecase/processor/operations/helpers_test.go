package operations

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func testFace(t *testing.T, size int) *FontFace {
	t.Helper()

	tf, err := ParseTypeface(goregular.TTF)
	require.NoError(t, err)

	face, err := tf.Face(size)
	require.NoError(t, err)
	return face
}

func solidImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// alphaBounds is the smallest rectangle holding every pixel of img with
// non-zero alpha inside r.
func alphaBounds(img image.Image, r image.Rectangle) image.Rectangle {
	r = r.Intersect(img.Bounds())
	out := image.Rectangle{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				continue
			}
			out = out.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return out
}
