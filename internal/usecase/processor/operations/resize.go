package operations

import (
	"image"

	"github.com/disintegration/imaging"
)

// ScaleToHeight resizes img to height, keeping its aspect ratio. A logo with
// zero height is returned unscaled.
func ScaleToHeight(img image.Image, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dy() == 0 {
		return img
	}

	ratio := float64(height) / float64(bounds.Dy())
	width := int(float64(bounds.Dx()) * ratio)

	return resizeImage(img, width, height)
}

// ScaleToWidth resizes img to width, keeping its aspect ratio. A logo with
// zero width keeps its original height.
func ScaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	height := bounds.Dy()
	if bounds.Dx() != 0 {
		ratio := float64(width) / float64(bounds.Dx())
		height = int(float64(bounds.Dy()) * ratio)
	}

	return resizeImage(img, width, height)
}

func resizeImage(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
