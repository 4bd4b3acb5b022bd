package operations

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"watermark-generator/internal/domain"

	xdraw "golang.org/x/image/draw"
)

// Layout is the fixed geometry of a watermark canvas.
type Layout struct {
	CanvasWidth                  int
	CanvasHeight                 int
	Padding                      int
	TextColor                    color.NRGBA
	LocationSeparator            string
	CameraLensSeparator          string
	LocationLogoTextSpacing      int
	LocationVerticalOffset       int
	LocationTextHorizontalOffset int
	DefaultSignatureLogoWidth    int
}

// Logos holds the optional image of each logo slot. A nil slot is drawn as
// text only and reserves no space.
type Logos struct {
	Location  image.Image
	Signature image.Image
}

// Placement is where each element lands on the canvas. Rectangles of absent
// elements are empty.
type Placement struct {
	LocationText  image.Rectangle
	LocationLogo  image.Rectangle
	InfoText      image.Rectangle
	SignatureLogo image.Rectangle
}

type Watermarker struct {
	layout Layout
	logos  Logos
}

func NewWatermarker(layout Layout, logos Logos) *Watermarker {
	return &Watermarker{
		layout: layout,
		logos:  logos,
	}
}

// Texts returns the upper-cased location and info lines for req.
func (w *Watermarker) Texts(req domain.WatermarkRequest) (string, string) {
	location := req.City + w.layout.LocationSeparator + req.Location
	info := domain.InfoTextPrefix + req.Camera + w.layout.CameraLensSeparator + req.Lens
	return strings.ToUpper(location), strings.ToUpper(info)
}

func (w *Watermarker) signatureWidth(req domain.WatermarkRequest) int {
	if req.SignatureLogoWidth != nil {
		return *req.SignatureLogoWidth
	}
	return w.layout.DefaultSignatureLogoWidth
}

// Compose draws req onto a new transparent canvas with face. Nothing is
// clipped: elements that do not fit are partially or fully off-canvas.
func (w *Watermarker) Compose(face *FontFace, req domain.WatermarkRequest) (*image.RGBA, Placement, error) {
	locationText, infoText := w.Texts(req)

	location, err := Measure(locationText, face)
	if err != nil {
		return nil, Placement{}, fmt.Errorf("failed to measure location text: %w", err)
	}

	info, err := Measure(infoText, face)
	if err != nil {
		return nil, Placement{}, fmt.Errorf("failed to measure info text: %w", err)
	}

	var locationLogo, signatureLogo image.Image
	if w.logos.Location != nil {
		locationLogo = ScaleToHeight(w.logos.Location, location.Height)
	}
	if w.logos.Signature != nil {
		signatureLogo = ScaleToWidth(w.logos.Signature, w.signatureWidth(req))
	}

	p := w.Place(location, info, locationLogo, signatureLogo)

	canvas := image.NewRGBA(image.Rect(0, 0, w.layout.CanvasWidth, w.layout.CanvasHeight))
	src := image.NewUniform(w.layout.TextColor)

	location.DrawAt(canvas, p.LocationText.Min, src)
	if locationLogo != nil {
		xdraw.Draw(canvas, p.LocationLogo, locationLogo, locationLogo.Bounds().Min, xdraw.Over)
	}

	info.DrawAt(canvas, p.InfoText.Min, src)
	if signatureLogo != nil {
		xdraw.Draw(canvas, p.SignatureLogo, signatureLogo, signatureLogo.Bounds().Min, xdraw.Over)
	}

	return canvas, p, nil
}

// Place computes the layout for already measured texts and already scaled
// logos. Both texts sit with their ink bottom on canvasHeight - padding; the
// location block grows rightwards from the left padding, the info block is
// right-aligned to canvasWidth - padding with the signature stacked above it.
func (w *Watermarker) Place(location, info TextBlock, locationLogo, signatureLogo image.Image) Placement {
	l := w.layout
	var p Placement

	bottomY := l.CanvasHeight - l.Padding

	textX := l.Padding + l.LocationTextHorizontalOffset
	textY := bottomY - location.Height
	p.LocationText = rect(textX, textY, location.Width, location.Height)

	if locationLogo != nil {
		size := locationLogo.Bounds().Size()
		x := textX - l.LocationLogoTextSpacing - size.X
		y := textY + location.Height - size.Y + l.LocationVerticalOffset
		p.LocationLogo = rect(x, y, size.X, size.Y)
	}

	rightEdge := l.CanvasWidth - l.Padding

	infoX := rightEdge - info.Width
	infoY := bottomY - info.Height
	p.InfoText = rect(infoX, infoY, info.Width, info.Height)

	if signatureLogo != nil {
		size := signatureLogo.Bounds().Size()
		x := rightEdge - size.X
		y := infoY - l.Padding/2 - size.Y
		p.SignatureLogo = rect(x, y, size.X, size.Y)
	}

	return p
}

func rect(x, y, width, height int) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(x, y),
		Max: image.Pt(x+width, y+height),
	}
}
