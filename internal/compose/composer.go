// Package compose turns intermediate rasters into final favicon artifacts.
//
// A Composer receives a Request naming its input rasters and the output file
// and reports the path it wrote. MagickComposer delegates to the ImageMagick
// command-line tool; NativeComposer does the same work in-process.
package compose

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrToolNotFound is returned when the external composition tool is not on PATH.
var ErrToolNotFound = errors.New("image composition tool not found")

// Backend names accepted by New.
const (
	BackendMagick = "magick"
	BackendNative = "native"
)

// Request describes one composition.
type Request struct {
	// Inputs are the raster files to combine. ICO outputs take several,
	// PNG outputs take exactly one.
	Inputs []string
	// Output is the file to write. Its extension selects the format.
	Output string
	// Size is the square canvas extent in pixels. Zero keeps the input size.
	Size int
	// Background fills the canvas around the centered input. Empty means
	// no background.
	Background string
	// Colors caps the palette size. Zero leaves colors unchanged.
	Colors int
}

// Validate checks the request shape before any tool runs.
func (r Request) Validate() error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("compose %s: no inputs", r.Output)
	}
	if r.Output == "" {
		return fmt.Errorf("compose: empty output path")
	}
	if r.Size < 0 {
		return fmt.Errorf("compose %s: negative size %d", r.Output, r.Size)
	}
	if r.Colors < 0 || r.Colors > 256 {
		return fmt.Errorf("compose %s: invalid color count %d", r.Output, r.Colors)
	}
	if !r.isICO() && len(r.Inputs) != 1 {
		return fmt.Errorf("compose %s: png output takes one input, got %d", r.Output, len(r.Inputs))
	}
	return nil
}

func (r Request) isICO() bool {
	return strings.EqualFold(filepath.Ext(r.Output), ".ico")
}

// Composer composes input rasters into one output file and returns its path.
type Composer interface {
	Compose(ctx context.Context, req Request) (string, error)
}

// New returns the composer for backend. command is only used by the magick
// backend and defaults to "magick".
func New(backend, command string) (Composer, error) {
	switch backend {
	case "", BackendMagick:
		return NewMagickComposer(command), nil
	case BackendNative:
		return NewNativeComposer(), nil
	default:
		return nil, fmt.Errorf("unknown composer backend %q (supported: %s, %s)", backend, BackendMagick, BackendNative)
	}
}
