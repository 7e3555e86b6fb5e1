package cmd

import (
	"fmt"
	"os"

	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/snippet"
	"github.com/spf13/cobra"
)

var snippetCmd = &cobra.Command{
	Use:   "snippet",
	Short: "Print the <head> tags for the generated assets",
	Long: `Print the <link> and <meta> tags that reference the generated assets.
With --check, report which of them an existing page is missing instead.

Examples:
  favicongen snippet                        # Tags served from /
  favicongen snippet --base-url /static     # Assets served from /static
  favicongen snippet --check index.html     # Exit 1 if tags are missing`,
	Args: cobra.NoArgs,
	RunE: runSnippet,
}

var (
	snippetBaseURL string
	snippetCheck   string
)

func init() {
	rootCmd.AddCommand(snippetCmd)

	snippetCmd.Flags().StringVar(&snippetBaseURL, "base-url", "/", "Public path the output directory is served from")
	snippetCmd.Flags().StringVar(&snippetCheck, "check", "", "HTML file to check for missing tags")
}

func runSnippet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := snippet.Options{
		BaseURL:    snippetBaseURL,
		ThemeColor: cfg.Manifest.ThemeColor,
	}
	out := cmd.OutOrStdout()

	if snippetCheck == "" {
		return snippet.Render(out, opts)
	}

	f, err := os.Open(snippetCheck)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", snippetCheck, err)
	}
	defer f.Close()

	missing, err := snippet.Missing(f, opts)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Fprintf(out, "✅ %s references every favicon asset\n", snippetCheck)
		return nil
	}

	fmt.Fprintf(out, "%s is missing %d tag(s); add to <head>:\n", snippetCheck, len(missing))
	for _, tag := range missing {
		fmt.Fprintln(out, tag.String())
	}
	return fmt.Errorf("%s is missing %d favicon tag(s)", snippetCheck, len(missing))
}
