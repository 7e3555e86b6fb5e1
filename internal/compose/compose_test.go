package compose

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nethravigil/favicongen/internal/raster"
	"github.com/nethravigil/favicongen/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRasters renders the sample SVG to favicon-<size>.png files in dir.
func writeRasters(t *testing.T, dir string, sizes ...int) []string {
	t.Helper()
	r := raster.NewSVGRasterizer()
	paths := make([]string, 0, len(sizes))
	for _, size := range sizes {
		data, err := r.Render([]byte(testutils.SampleSVG), size, size)
		require.NoError(t, err)
		path := filepath.Join(dir, "favicon-"+strconv.Itoa(size)+".png")
		require.NoError(t, os.WriteFile(path, data, 0644))
		paths = append(paths, path)
	}
	return paths
}

type icoEntry struct {
	width, height int
	data          []byte
}

// readICO parses the ICONDIR header and returns each frame's declared size
// and payload.
func readICO(t *testing.T, data []byte) []icoEntry {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 6)
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[0:2]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[2:4]), "type must be icon")

	count := int(binary.LittleEndian.Uint16(data[4:6]))
	entries := make([]icoEntry, 0, count)
	for i := 0; i < count; i++ {
		e := data[6+16*i : 6+16*(i+1)]
		w, h := int(e[0]), int(e[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		size := binary.LittleEndian.Uint32(e[8:12])
		offset := binary.LittleEndian.Uint32(e[12:16])
		entries = append(entries, icoEntry{width: w, height: h, data: data[offset : offset+size]})
	}
	return entries
}

func countColors(img image.Image) int {
	seen := make(map[color.RGBA64]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			seen[color.RGBA64{uint16(r), uint16(g), uint16(bl), uint16(a)}] = struct{}{}
		}
	}
	return len(seen)
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "png", req: Request{Inputs: []string{"a.png"}, Output: "b.png", Size: 180, Background: "white"}},
		{name: "ico", req: Request{Inputs: []string{"a.png", "b.png"}, Output: "favicon.ico", Colors: 256}},
		{name: "no inputs", req: Request{Output: "b.png"}, wantErr: true},
		{name: "no output", req: Request{Inputs: []string{"a.png"}}, wantErr: true},
		{name: "negative size", req: Request{Inputs: []string{"a.png"}, Output: "b.png", Size: -1}, wantErr: true},
		{name: "too many colors", req: Request{Inputs: []string{"a.png"}, Output: "b.ico", Colors: 1000}, wantErr: true},
		{name: "png from two inputs", req: Request{Inputs: []string{"a.png", "b.png"}, Output: "b.png"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New("", "")
	require.NoError(t, err)
	assert.IsType(t, &MagickComposer{}, c)

	c, err = New(BackendNative, "")
	require.NoError(t, err)
	assert.IsType(t, &NativeComposer{}, c)

	_, err = New("gimp", "")
	assert.Error(t, err)
}

func TestMagickComposer_Args(t *testing.T) {
	mc := NewMagickComposer("")
	assert.Equal(t, "magick", mc.Command())

	ico := Request{
		Inputs: []string{"public/favicon-16.png", "public/favicon-32.png", "public/favicon-48.png", "public/favicon-64.png"},
		Output: "public/favicon.ico",
		Colors: 256,
	}
	assert.Equal(t, []string{
		"convert",
		"public/favicon-16.png", "public/favicon-32.png", "public/favicon-48.png", "public/favicon-64.png",
		"-colors", "256",
		"public/favicon.ico",
	}, mc.Args(ico))

	touch := Request{
		Inputs:     []string{"public/favicon-180.png"},
		Output:     "public/apple-touch-icon.png",
		Size:       180,
		Background: "white",
	}
	assert.Equal(t, []string{
		"convert", "public/favicon-180.png",
		"-background", "white", "-gravity", "center", "-extent", "180x180",
		"public/apple-touch-icon.png",
	}, mc.Args(touch))

	im6 := NewMagickComposer("convert")
	assert.Equal(t, []string{"in.png", "out.png"}, im6.Args(Request{Inputs: []string{"in.png"}, Output: "out.png"}))
}

func TestMagickComposer_RejectsUnsafeInput(t *testing.T) {
	mc := NewMagickComposer("")
	mc.lookPath = func(string) (string, error) { return "/usr/bin/magick", nil }

	_, err := mc.Compose(context.Background(), Request{Inputs: []string{"a.png; rm -rf /"}, Output: "b.png"})
	assert.ErrorContains(t, err, "command validation failed")

	bad := NewMagickComposer("sh")
	_, err = bad.Compose(context.Background(), Request{Inputs: []string{"a.png"}, Output: "b.png"})
	assert.ErrorContains(t, err, "not allowed")
}

func TestMagickComposer_ToolNotFound(t *testing.T) {
	mc := NewMagickComposer("")
	mc.lookPath = func(file string) (string, error) { return "", exec.ErrNotFound }

	_, err := mc.Compose(context.Background(), Request{Inputs: []string{"a.png"}, Output: "b.png"})
	assert.True(t, errors.Is(err, ErrToolNotFound))
}

func TestMagickComposer_Integration(t *testing.T) {
	if _, err := exec.LookPath("magick"); err != nil {
		t.Skip("magick not installed")
	}

	dir := t.TempDir()
	inputs := writeRasters(t, dir, 16, 32, 48, 64)
	out := filepath.Join(dir, "favicon.ico")

	got, err := NewMagickComposer("").Compose(context.Background(), Request{Inputs: inputs, Output: out, Colors: 256})
	require.NoError(t, err)
	assert.Equal(t, out, got)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, readICO(t, data), 4)
}

func TestNativeComposer_ICO(t *testing.T) {
	dir := t.TempDir()
	inputs := writeRasters(t, dir, 16, 32, 48, 64)
	out := filepath.Join(dir, "favicon.ico")

	got, err := NewNativeComposer().Compose(context.Background(), Request{Inputs: inputs, Output: out, Colors: 256})
	require.NoError(t, err)
	assert.Equal(t, out, got)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	entries := readICO(t, data)
	require.Len(t, entries, 4)
	for i, size := range []int{16, 32, 48, 64} {
		assert.Equal(t, size, entries[i].width)
		assert.Equal(t, size, entries[i].height)

		if bytes.HasPrefix(entries[i].data, []byte("\x89PNG")) {
			img, err := png.Decode(bytes.NewReader(entries[i].data))
			require.NoError(t, err)
			assert.LessOrEqual(t, countColors(img), 256)
		}
	}
}

func TestNativeComposer_Extent(t *testing.T) {
	dir := t.TempDir()
	inputs := writeRasters(t, dir, 128)
	out := filepath.Join(dir, "mstile-150x150.png")

	_, err := NewNativeComposer().Compose(context.Background(), Request{
		Inputs:     inputs,
		Output:     out,
		Size:       150,
		Background: "white",
	})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())

	// The 11px border around the centered 128px raster is background.
	r, g, b, a := img.At(2, 2).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestNativeComposer_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewNativeComposer().Compose(context.Background(), Request{
		Inputs: []string{filepath.Join(dir, "favicon-180.png")},
		Output: filepath.Join(dir, "apple-touch-icon.png"),
		Size:   180,
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, "apple-touch-icon.png"))
}

func TestQuantize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8(x + y), A: 0xff})
		}
	}

	for _, n := range []int{2, 16, 256} {
		q := Quantize(src, n)
		assert.LessOrEqual(t, len(q.Palette), n)
		assert.Equal(t, src.Bounds(), q.Bounds())
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("white")
	require.NoError(t, err)
	assert.Equal(t, color.White, c)

	c, err = ParseColor("#1E40AF")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}, c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, c)

	c, err = ParseColor("none")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseColor("chartreuse")
	assert.Error(t, err)
	_, err = ParseColor("#12")
	assert.Error(t, err)
}
