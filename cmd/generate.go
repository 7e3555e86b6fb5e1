package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/nethravigil/favicongen/internal/compose"
	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/favicon"
	"github.com/nethravigil/favicongen/internal/logging"
	"github.com/nethravigil/favicongen/internal/raster"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"g"},
	Short:   "Generate the favicon assets from the source SVG",
	Long: `Rasterize the source SVG, compose favicon.ico and the branded PNGs, write
site.webmanifest and browserconfig.xml, then remove the intermediate rasters.

The first failing step stops the run with a non-zero exit.

Examples:
  favicongen generate                          # Use .favicongen.yml or defaults
  favicongen generate --backend native         # No ImageMagick required
  favicongen generate --source logo.svg --output dist
  favicongen generate --progress               # Show a progress bar`,
	RunE: runGenerate,
}

var generateProgress bool

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("source", "s", "", "Source SVG (default public/favicon.svg)")
	generateCmd.Flags().StringP("output", "o", "", "Output directory (default public)")
	generateCmd.Flags().StringP("backend", "b", "", "Composer backend (magick, native)")
	generateCmd.Flags().BoolVarP(&generateProgress, "progress", "p", false, "Show a progress bar")

	bindFlags(generateCmd.Flags(), map[string]string{
		"source":  "source",
		"output":  "output_dir",
		"backend": "composer.backend",
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	opts := cfg.GeneratorOptions()
	if generateProgress {
		opts.Progress = progressReporter(cmd.ErrOrStderr())
	}

	gen, err := newGenerator(cfg, opts, newLogger())
	if err != nil {
		return err
	}

	result, err := gen.Generate(ctx)
	if err != nil {
		if errors.Is(err, compose.ErrToolNotFound) {
			printInstallHints(cmd.ErrOrStderr())
		}
		if errors.Is(err, favicon.ErrRasterMissing) {
			fmt.Fprintf(cmd.ErrOrStderr(), "raster_sizes must include %v; run 'favicongen doctor' for details\n", opts.MissingRasters())
		}
		return err
	}

	for _, artifact := range result.Artifacts {
		fmt.Fprintf(out, "Generated: %s\n", artifact)
	}
	fmt.Fprintln(out, "\nIcon generation complete!")
	fmt.Fprintln(out, "Make sure to update your index.html with the correct paths to the generated icons.")
	fmt.Fprintln(out, "Run 'favicongen snippet' to print them.")
	return nil
}

// newGenerator wires the rasterizer and the configured composer backend.
func newGenerator(cfg *config.Config, opts favicon.Options, logger logging.Logger) (*favicon.Generator, error) {
	composer, err := compose.New(cfg.Composer.Backend, cfg.Composer.Command)
	if err != nil {
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}
	return favicon.NewGenerator(opts, raster.NewSVGRasterizer(), composer, logger), nil
}

// progressReporter draws one bar per run, sized from the first step.
func progressReporter(w io.Writer) func(favicon.Step) {
	var bar *progressbar.ProgressBar
	return func(step favicon.Step) {
		if bar == nil {
			bar = progressbar.NewOptions(step.Total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("generating"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(fmt.Sprintf("%-9s %s", step.Stage, filepath.Base(step.Path)))
		_ = bar.Add(1)
		if step.Index == step.Total {
			_ = bar.Finish()
			bar = nil
		}
	}
}
