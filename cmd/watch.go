package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/favicon"
	"github.com/nethravigil/favicongen/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Regenerate the assets whenever the source SVG changes",
	Long: `Generate once, then watch the source SVG and regenerate after every
burst of changes. Runs never overlap; a failed run is reported and the
watcher keeps going.

Examples:
  favicongen watch                   # Watch the configured source
  favicongen watch --verbose         # Print every change event`,
	RunE: runWatch,
}

var watchVerbose bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()
	gen, err := newGenerator(cfg, cfg.GeneratorOptions(), logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	regenerate := newRegenerator(ctx, gen, out, errOut)

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	source := filepath.FromSlash(cfg.Source)
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(watcher.PathFilter(source))
	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		if watchVerbose {
			for _, event := range events {
				fmt.Fprintf(out, "📁 %s: %s\n", event.Type, event.Path)
			}
		}
		regenerate()
		return nil
	})

	// Editors replace files on save, so watch the directory rather than the file.
	if err := fileWatcher.AddPath(filepath.Dir(source)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", source, err)
	}

	regenerate()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(out, "👀 Watching %s for changes... (Press Ctrl+C to stop)\n", source)
	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping watcher...")
	return nil
}

// newRegenerator returns a function that runs the generator and reports the
// outcome. Calls are serialized.
func newRegenerator(ctx context.Context, gen *favicon.Generator, out, errOut io.Writer) func() {
	var mu sync.Mutex
	return func() {
		mu.Lock()
		defer mu.Unlock()

		result, err := gen.Generate(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "❌ Generation failed: %v\n", err)
			return
		}
		fmt.Fprintf(out, "✅ Generated %d assets\n", len(result.Artifacts))
	}
}
