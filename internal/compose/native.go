package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/png"
	"os"
	"strconv"
	"strings"

	ico "github.com/sergeymakinen/go-ico"
	xdraw "golang.org/x/image/draw"
)

// NativeComposer composes images in-process. It mirrors the ImageMagick
// operations favicongen uses: centered extent on a background canvas, a
// palette cap, and multi-frame ICO output.
type NativeComposer struct{}

// NewNativeComposer creates an in-process composer.
func NewNativeComposer() *NativeComposer {
	return &NativeComposer{}
}

// Compose implements Composer.
func (nc *NativeComposer) Compose(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	bg, err := ParseColor(req.Background)
	if err != nil {
		return "", fmt.Errorf("compose %s: %w", req.Output, err)
	}

	frames := make([]image.Image, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		src, err := decodePNG(in)
		if err != nil {
			return "", fmt.Errorf("compose %s: %w", req.Output, err)
		}
		frame := extent(src, req.Size, bg)
		if req.Colors > 0 {
			frame = Quantize(frame, req.Colors)
		}
		frames = append(frames, frame)
	}

	var buf bytes.Buffer
	if req.isICO() {
		err = ico.EncodeAll(&buf, frames)
	} else {
		err = png.Encode(&buf, frames[0])
	}
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", req.Output, err)
	}

	if err := os.WriteFile(req.Output, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", req.Output, err)
	}
	return req.Output, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// extent places src centered on a size×size canvas filled with bg, cropping
// when src is larger. A zero size keeps the source bounds.
func extent(src image.Image, size int, bg color.Color) image.Image {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if size > 0 {
		w, h = size, size
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		xdraw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	}

	offX := (w - sb.Dx()) / 2
	offY := (h - sb.Dy()) / 2
	dr := image.Rect(offX, offY, offX+sb.Dx(), offY+sb.Dy())
	xdraw.Draw(dst, dr, src, sb.Min, xdraw.Over)
	return dst
}

// Quantize reduces img to at most n colors with Floyd–Steinberg dithering.
// Fully transparent pixels keep a transparent palette entry.
func Quantize(img image.Image, n int) *image.Paletted {
	if n < 2 {
		n = 2
	}
	pal := color.Palette{color.Transparent}
	if n-1 >= len(palette.WebSafe) {
		pal = append(pal, palette.WebSafe...)
	} else {
		pal = append(pal, palette.Plan9[:n-1]...)
	}

	dst := image.NewPaletted(img.Bounds(), pal)
	xdraw.FloydSteinberg.Draw(dst, dst.Bounds(), img, img.Bounds().Min)
	return dst
}

var namedColors = map[string]color.Color{
	"white": color.White,
	"black": color.Black,
}

// ParseColor accepts the color spellings favicongen passes to ImageMagick:
// "", "none" and "transparent" (no background), "white", "black", #rgb and
// #rrggbb. A nil color means no background.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return nil, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if hex == s || (len(hex) != 3 && len(hex) != 6) {
		return nil, fmt.Errorf("unsupported color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unsupported color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
