// Package favicon produces the favicon asset bundle from one SVG source.
//
// A run is strictly sequential: rasterize the SVG to every configured size,
// compose the ICO and the branded PNGs from those rasters, write the web
// manifest and browserconfig.xml, then delete the intermediate rasters. Any
// read, rasterize, compose or write failure aborts the run; a raster that is
// already gone during cleanup is not a failure.
package favicon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nethravigil/favicongen/internal/compose"
	"github.com/nethravigil/favicongen/internal/logging"
	"github.com/nethravigil/favicongen/internal/raster"
)

// DefaultRasterSizes are the square sizes rasterized from the SVG.
var DefaultRasterSizes = []int{16, 32, 48, 64, 128, 192, 256, 384, 512}

// DefaultICOSizes are the frames packed into favicon.ico.
var DefaultICOSizes = []int{16, 32, 48, 64}

// ManifestOptions are the site.webmanifest values.
type ManifestOptions struct {
	Name            string
	ShortName       string
	ThemeColor      string
	BackgroundColor string
	Display         string
}

// Options configure one generator.
type Options struct {
	Source      string
	OutputDir   string
	RasterSizes []int
	ICOSizes    []int
	ICOColors   int
	// Background fills the canvas around the touch icon, Android icons and tile.
	Background string
	Manifest   ManifestOptions
	TileColor  string
	// Progress, when set, is called after every completed step.
	Progress func(Step)
}

// DefaultOptions returns the options the original asset set was built with.
func DefaultOptions() Options {
	return Options{
		Source:      filepath.Join("public", "favicon.svg"),
		OutputDir:   "public",
		RasterSizes: append([]int(nil), DefaultRasterSizes...),
		ICOSizes:    append([]int(nil), DefaultICOSizes...),
		ICOColors:   256,
		Background:  "white",
		Manifest: ManifestOptions{
			Name:            "Nethra Vigil",
			ShortName:       "Nethra",
			ThemeColor:      "#1E40AF",
			BackgroundColor: "#ffffff",
			Display:         "standalone",
		},
		TileColor: "#1E40AF",
	}
}

// composeInputSizes are the raster sizes the compose steps read, in order.
var composeInputSizes = []int{180, 192, 512, 150}

// MissingRasters returns the sizes a compose step reads that RasterSizes does
// not produce. A run with missing rasters fails at the first step needing one.
func (o Options) MissingRasters() []int {
	produced := make(map[int]bool, len(o.RasterSizes))
	for _, size := range o.RasterSizes {
		produced[size] = true
	}

	var missing []int
	for _, size := range append(append([]int(nil), o.ICOSizes...), composeInputSizes...) {
		if !produced[size] {
			missing = append(missing, size)
			produced[size] = true
		}
	}
	return missing
}

// Step reports one completed unit of work.
type Step struct {
	Index int
	Total int
	Stage Stage
	Path  string
}

// Result lists what a successful run produced.
type Result struct {
	Artifacts []string
	Removed   []string
}

// Generator runs the asset pipeline.
type Generator struct {
	opts       Options
	rasterizer raster.Rasterizer
	composer   compose.Composer
	logger     logging.Logger
	step       int
}

// NewGenerator creates a generator. A nil logger discards log output.
func NewGenerator(opts Options, rasterizer raster.Rasterizer, composer compose.Composer, logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		opts:       opts,
		rasterizer: rasterizer,
		composer:   composer,
		logger:     logger.WithComponent("generator"),
	}
}

// TotalSteps is the number of Progress callbacks a successful run makes.
func (g *Generator) TotalSteps() int {
	// read + rasters + ico, touch, 2×android, manifest, browserconfig, tile + cleanup
	return 1 + len(g.opts.RasterSizes) + 7 + 1
}

func (g *Generator) path(name string) string {
	return filepath.Join(g.opts.OutputDir, name)
}

func (g *Generator) done(stage Stage, path string) {
	g.step++
	if g.opts.Progress != nil {
		g.opts.Progress(Step{Index: g.step, Total: g.TotalSteps(), Stage: stage, Path: path})
	}
}

// Generate runs every step in order and stops at the first fatal error.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	g.step = 0
	op := logging.StartOperation(g.logger, "generate")

	result, err := g.run(ctx)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}
	op.End(ctx)
	return result, nil
}

func (g *Generator) run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(g.opts.OutputDir, 0755); err != nil {
		return nil, stageErr(StageSetup, g.opts.OutputDir, err)
	}

	svg, err := os.ReadFile(g.opts.Source)
	if err != nil {
		return nil, stageErr(StageRead, g.opts.Source, err)
	}
	g.done(StageRead, g.opts.Source)

	for _, size := range g.opts.RasterSizes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := g.path(RasterName(size))
		data, err := g.rasterizer.Render(svg, size, size)
		if err != nil {
			return nil, stageErr(StageRasterize, out, err)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			return nil, stageErr(StageWrite, out, err)
		}
		g.logger.Debug(ctx, "Rasterized", "size", size, "path", out)
		g.done(StageRasterize, out)
	}

	result := &Result{}

	if err := g.compose(ctx, result, g.opts.ICOSizes, FaviconICO, 0, "", g.opts.ICOColors); err != nil {
		return nil, err
	}
	if err := g.compose(ctx, result, []int{180}, AppleTouchIcon, 180, g.opts.Background, 0); err != nil {
		return nil, err
	}
	if err := g.compose(ctx, result, []int{192}, AndroidChrome192, 192, g.opts.Background, 0); err != nil {
		return nil, err
	}
	if err := g.compose(ctx, result, []int{512}, AndroidChrome512, 512, g.opts.Background, 0); err != nil {
		return nil, err
	}

	manifest, err := RenderManifest(g.opts.Manifest)
	if err != nil {
		return nil, stageErr(StageWrite, g.path(WebManifest), err)
	}
	if err := g.write(result, WebManifest, manifest); err != nil {
		return nil, err
	}

	browserConfig, err := RenderBrowserConfig(g.opts.TileColor)
	if err != nil {
		return nil, stageErr(StageWrite, g.path(BrowserConfigFile), err)
	}
	if err := g.write(result, BrowserConfigFile, browserConfig); err != nil {
		return nil, err
	}

	if err := g.compose(ctx, result, []int{150}, MSTile150, 150, g.opts.Background, 0); err != nil {
		return nil, err
	}

	removed, err := Cleanup(g.opts.OutputDir, g.opts.RasterSizes)
	result.Removed = removed
	if err != nil {
		return nil, err
	}
	g.logger.Debug(ctx, "Removed intermediate rasters", "count", len(removed))
	g.done(StageCleanup, g.opts.OutputDir)

	return result, nil
}

// compose checks that every input raster is on disk, then hands the request
// to the composer.
func (g *Generator) compose(ctx context.Context, result *Result, sizes []int, name string, extent int, background string, colors int) error {
	out := g.path(name)

	inputs := make([]string, 0, len(sizes))
	for _, size := range sizes {
		in := g.path(RasterName(size))
		if _, err := os.Stat(in); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return stageErr(StageCompose, out, fmt.Errorf("%w: %s", ErrRasterMissing, in))
			}
			return stageErr(StageCompose, out, err)
		}
		inputs = append(inputs, in)
	}

	written, err := g.composer.Compose(ctx, compose.Request{
		Inputs:     inputs,
		Output:     out,
		Size:       extent,
		Background: background,
		Colors:     colors,
	})
	if err != nil {
		return stageErr(StageCompose, out, err)
	}

	g.logger.Debug(ctx, "Composed", "path", written, "inputs", len(inputs))
	result.Artifacts = append(result.Artifacts, written)
	g.done(StageCompose, written)
	return nil
}

func (g *Generator) write(result *Result, name string, data []byte) error {
	out := g.path(name)
	if err := os.WriteFile(out, data, 0644); err != nil {
		return stageErr(StageWrite, out, err)
	}
	result.Artifacts = append(result.Artifacts, out)
	g.done(StageWrite, out)
	return nil
}

// Cleanup removes the intermediate raster for every size and returns the
// paths it actually deleted. Files that are already gone are skipped; any
// other removal error stops the cleanup.
func Cleanup(outputDir string, sizes []int) ([]string, error) {
	removed := make([]string, 0, len(sizes))
	for _, size := range sizes {
		path := filepath.Join(outputDir, RasterName(size))
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
		case errors.Is(err, fs.ErrNotExist):
			// already removed or never created
		default:
			return removed, stageErr(StageCleanup, path, err)
		}
	}
	return removed, nil
}
