package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nethravigil/favicongen/internal/compose"
	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/raster"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment before generating",
	Long: `Diagnose the favicon toolchain and project layout.

The doctor command checks:

- The configuration file and its values
- ImageMagick on PATH (magick backend only)
- The source SVG exists and parses
- The output directory is writable
- Every raster size a compose step reads is produced
- The Go toolchain used by 'favicongen setup'

Examples:
  favicongen doctor                  # Table output
  favicongen doctor --verbose        # Include details and info results
  favicongen doctor --format json    # Output as JSON for tooling`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Category   string                 `json:"category" yaml:"category"`
	Status     string                 `json:"status" yaml:"status"` // "ok", "warning", "error", "info"
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

// doctorInput is what every check sees. When the configuration fails to
// load, cfg holds the defaults and cfgErr the reason.
type doctorInput struct {
	cfg    *config.Config
	cfgErr error
}

type doctorCheck func(context.Context, *doctorInput) DiagnosticResult

var titleCase = cases.Title(language.English)

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show verbose diagnostic information")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	switch doctorFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", doctorFormat)
	}

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	input := &doctorInput{}
	input.cfg, input.cfgErr = config.Load()
	if input.cfgErr != nil {
		input.cfg = config.Default()
	}

	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
	}

	checks := []doctorCheck{
		checkConfiguration,
		checkComposerTool,
		checkSourceSVG,
		checkOutputDirectory,
		checkRasterCoverage,
		checkGoToolchain,
	}
	for _, check := range checks {
		report.Results = append(report.Results, check(ctx, input))
	}
	report.Summary = calculateSummary(report.Results)

	if doctorFormat != "table" {
		return outputReport(out, report, doctorFormat)
	}

	fmt.Fprintln(out, "🔍 favicongen Doctor")
	fmt.Fprintln(out, "====================")
	fmt.Fprintln(out)
	for _, result := range report.Results {
		if !doctorVerbose && result.Status == "info" {
			continue
		}
		displayResult(out, result)
	}

	fmt.Fprintln(out, "📊 Summary")
	fmt.Fprintln(out, "==========")
	displaySummary(out, report.Summary)
	return nil
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
	}
	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}
	if used := viper.ConfigFileUsed(); used != "" {
		env["config_file"] = used
	}
	return env
}

func checkConfiguration(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Configuration",
		Category: "configuration",
		Status:   "ok",
	}

	if in.cfgErr != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Configuration has errors: %v", in.cfgErr)
		result.Suggestion = "Fix the values in " + config.FileName + " or the FAVICONGEN_* environment"
		return result
	}

	if viper.ConfigFileUsed() == "" {
		result.Status = "info"
		result.Message = "No " + config.FileName + " found, using defaults"
		result.Suggestion = "Run 'favicongen init' to write one"
	} else {
		result.Message = "Configuration is valid"
	}

	result.Details = map[string]interface{}{
		"source":     in.cfg.Source,
		"output_dir": in.cfg.OutputDir,
		"backend":    in.cfg.Composer.Backend,
	}
	return result
}

func checkComposerTool(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "ImageMagick",
		Category: "tools",
		Status:   "ok",
	}

	if in.cfg.Composer.Backend == compose.BackendNative {
		result.Status = "info"
		result.Message = "Native composer selected, ImageMagick is not required"
		return result
	}

	command := in.cfg.Composer.Command
	path, err := exec.LookPath(command)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s not found on PATH", command)
		result.Suggestion = installHint(runtime.GOOS) + " or set composer.backend to native"
		return result
	}

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s -version failed: %v", command, err)
		result.Suggestion = installHint(runtime.GOOS)
		return result
	}

	version := firstLine(string(output))
	result.Message = "Installed: " + version
	result.Details = map[string]interface{}{
		"path":    path,
		"version": version,
	}
	return result
}

func checkSourceSVG(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Source SVG",
		Category: "project",
		Status:   "ok",
	}

	source := filepath.FromSlash(in.cfg.Source)
	svg, err := os.ReadFile(source)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot read %s: %v", source, err)
		result.Suggestion = "Place the logo at " + source + " or set source in " + config.FileName
		return result
	}

	if _, err := raster.NewSVGRasterizer().Render(svg, 16, 16); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("%s does not render: %v", source, err)
		result.Suggestion = "Export the SVG as plain SVG 1.1 without scripts or external references"
		return result
	}

	result.Message = fmt.Sprintf("%s renders", source)
	result.Details = map[string]interface{}{"bytes": len(svg)}
	return result
}

func checkOutputDirectory(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Output Directory",
		Category: "project",
		Status:   "ok",
	}

	dir := filepath.FromSlash(in.cfg.OutputDir)
	probe := dir
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		// generate creates it; the parent has to be writable
		probe = filepath.Dir(dir)
		result.Message = fmt.Sprintf("%s will be created", dir)
	}

	f, err := os.CreateTemp(probe, ".favicongen-probe-*")
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot write to %s: %v", probe, err)
		result.Suggestion = "Check directory permissions or set output_dir"
		return result
	}
	f.Close()
	os.Remove(f.Name())

	if result.Message == "" {
		result.Message = fmt.Sprintf("%s is writable", dir)
	}
	return result
}

func checkRasterCoverage(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Raster Sizes",
		Category: "configuration",
		Status:   "ok",
		Message:  "Every compose step has its input raster",
	}

	missing := in.cfg.GeneratorOptions().MissingRasters()
	if len(missing) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("raster_sizes does not produce %v; generate will stop at the first step that reads one", missing)
		result.Suggestion = "Add the missing sizes to raster_sizes in " + config.FileName
		result.Details = map[string]interface{}{"missing": missing}
	}
	return result
}

func checkGoToolchain(ctx context.Context, in *doctorInput) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Go Toolchain",
		Category: "tools",
		Status:   "info",
	}

	output, err := exec.CommandContext(ctx, "go", "version").Output()
	if err != nil {
		result.Status = "warning"
		result.Message = "go not available, 'favicongen setup' will fail"
		result.Suggestion = "Install Go from https://go.dev/dl/"
		return result
	}

	result.Message = firstLine(string(output))
	return result
}

// installHint is the ImageMagick install instruction for goos.
func installHint(goos string) string {
	switch goos {
	case "windows":
		return "Download ImageMagick from https://imagemagick.org/script/download.php#windows"
	case "darwin":
		return "Install ImageMagick with: brew install imagemagick"
	default:
		return "Install ImageMagick with: sudo apt-get install imagemagick"
	}
}

func printInstallHints(w io.Writer) {
	fmt.Fprintln(w, "Error: ImageMagick is required to generate icons. Please install it first:")
	fmt.Fprintln(w, "Windows: https://imagemagick.org/script/download.php#windows")
	fmt.Fprintln(w, "macOS: brew install imagemagick")
	fmt.Fprintln(w, "Linux: sudo apt-get install imagemagick")
	fmt.Fprintln(w, "Or run with --backend native.")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func displayResult(w io.Writer, result DiagnosticResult) {
	var icon string
	switch result.Status {
	case "ok":
		icon = "✅"
	case "warning":
		icon = "⚠️"
	case "error":
		icon = "❌"
	case "info":
		icon = "ℹ️"
	default:
		icon = "•"
	}

	fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, titleCase.String(result.Category), result.Name, result.Message)

	if result.Suggestion != "" {
		fmt.Fprintf(w, "   💡 %s\n", result.Suggestion)
	}

	if doctorVerbose && len(result.Details) > 0 {
		fmt.Fprintf(w, "   📋 Details: %+v\n", result.Details)
	}

	fmt.Fprintln(w)
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Errors++
		case "info":
			summary.Info++
		}
	}
	return summary
}

func displaySummary(w io.Writer, summary ReportSummary) {
	fmt.Fprintf(w, "Total Checks: %d\n", summary.Total)
	fmt.Fprintf(w, "✅ OK: %d\n", summary.OK)
	fmt.Fprintf(w, "⚠️  Warnings: %d\n", summary.Warnings)
	fmt.Fprintf(w, "❌ Errors: %d\n", summary.Errors)
	fmt.Fprintf(w, "ℹ️  Info: %d\n", summary.Info)

	if summary.Errors == 0 {
		fmt.Fprintln(w, "\n🎉 Ready to run 'favicongen generate'")
	}
}

func outputReport(w io.Writer, report *DoctorReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
