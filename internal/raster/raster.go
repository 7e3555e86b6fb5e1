// Package raster converts SVG documents into square PNG bitmaps.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrInvalidSize is returned for non-positive target sizes.
var ErrInvalidSize = errors.New("raster size must be positive")

// Rasterizer renders vector source bytes to PNG bytes of the given dimensions.
type Rasterizer interface {
	Render(svg []byte, width, height int) ([]byte, error)
}

// SVGRasterizer renders SVG with oksvg onto a transparent RGBA canvas.
type SVGRasterizer struct {
	// Strict makes oksvg fail on unsupported SVG elements instead of skipping them.
	Strict bool
}

// NewSVGRasterizer creates a rasterizer that skips unsupported elements.
func NewSVGRasterizer() *SVGRasterizer {
	return &SVGRasterizer{}
}

// Render parses svg and draws it scaled into a width×height canvas, keeping
// the aspect ratio and centering the drawing.
func (r *SVGRasterizer) Render(svg []byte, width, height int) ([]byte, error) {
	img, err := r.RenderImage(svg, width, height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage is Render without the PNG encoding step.
func (r *SVGRasterizer) RenderImage(svg []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	mode := oksvg.IgnoreErrorMode
	if r.Strict {
		mode = oksvg.StrictErrorMode
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), mode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(width), float64(height)
	}

	scale := min(float64(width)/w, float64(height)/h)
	outW := w * scale
	outH := h * scale
	offsetX := (float64(width) - outW) / 2
	offsetY := (float64(height) - outH) / 2
	icon.SetTarget(offsetX, offsetY, outW, outH)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	return img, nil
}
