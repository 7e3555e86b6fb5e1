package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/nethravigil/favicongen/internal/compose"
	"github.com/nethravigil/favicongen/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a default .favicongen.yml",
	Long: `Write .favicongen.yml with every setting at its default value.

The default raster_sizes reproduce the original asset set, which lacks the
150 and 180 pixel rasters the tile and touch icon read. Pass --complete to
add them so generate runs to the end.

Examples:
  favicongen init                     # Default configuration
  favicongen init --backend native    # Compose without ImageMagick
  favicongen init --complete --force  # Overwrite with full raster sizes`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initForce    bool
	initBackend  string
	initComplete bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().StringVar(&initBackend, "backend", compose.BackendMagick, "Composer backend (magick, native)")
	initCmd.Flags().BoolVar(&initComplete, "complete", false, "Include the 150 and 180 rasters")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.FileName
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	cfg := config.Default()
	cfg.Composer.Backend = initBackend
	if initComplete {
		opts := cfg.GeneratorOptions()
		cfg.RasterSizes = mergeSizes(cfg.RasterSizes, opts.MissingRasters())
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := marshalConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", path)
	return nil
}

func marshalConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# favicongen configuration\n")
	buf.WriteString("# Every key can be overridden with FAVICONGEN_<SECTION>_<KEY>.\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mergeSizes returns sizes plus extra in ascending order without duplicates.
func mergeSizes(sizes, extra []int) []int {
	seen := make(map[int]bool, len(sizes)+len(extra))
	var merged []int
	for _, size := range append(append([]int(nil), sizes...), extra...) {
		if !seen[size] {
			seen[size] = true
			merged = append(merged, size)
		}
	}
	slices.Sort(merged)
	return merged
}
