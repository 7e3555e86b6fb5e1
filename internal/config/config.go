// Package config provides configuration management for favicongen using
// Viper for loading from files, environment variables, and command-line flags.
//
// Values resolve in this order: flags bound to viper keys, FAVICONGEN_*
// environment variables, the .favicongen.yml file, then the defaults below.
// Load validates the result before the generator sees it.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nethravigil/favicongen/internal/compose"
	"github.com/nethravigil/favicongen/internal/favicon"
	"github.com/nethravigil/favicongen/internal/setup"
	"github.com/nethravigil/favicongen/internal/validation"
	"github.com/spf13/viper"
)

const (
	// FileName is the default configuration file name.
	FileName = ".favicongen.yml"
	// EnvPrefix prefixes every environment override, e.g. FAVICONGEN_OUTPUT_DIR.
	EnvPrefix = "FAVICONGEN"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// BindEnv enables FAVICONGEN_<SECTION>_<KEY> environment overrides.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
}

type Config struct {
	Source      string         `mapstructure:"source" yaml:"source"`
	OutputDir   string         `mapstructure:"output_dir" yaml:"output_dir"`
	RasterSizes []int          `mapstructure:"raster_sizes" yaml:"raster_sizes,flow"`
	ICOSizes    []int          `mapstructure:"ico_sizes" yaml:"ico_sizes,flow"`
	ICOColors   int            `mapstructure:"ico_colors" yaml:"ico_colors"`
	Background  string         `mapstructure:"background" yaml:"background"`
	Manifest    ManifestConfig `mapstructure:"manifest" yaml:"manifest"`
	Tile        TileConfig     `mapstructure:"tile" yaml:"tile"`
	Composer    ComposerConfig `mapstructure:"composer" yaml:"composer"`
	Setup       SetupConfig    `mapstructure:"setup" yaml:"setup"`
	Watch       WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

type ManifestConfig struct {
	Name            string `mapstructure:"name" yaml:"name"`
	ShortName       string `mapstructure:"short_name" yaml:"short_name"`
	ThemeColor      string `mapstructure:"theme_color" yaml:"theme_color"`
	BackgroundColor string `mapstructure:"background_color" yaml:"background_color"`
	Display         string `mapstructure:"display" yaml:"display"`
}

type TileConfig struct {
	Color string `mapstructure:"color" yaml:"color"`
}

type ComposerConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Command string `mapstructure:"command" yaml:"command"`
}

type SetupConfig struct {
	Command []string `mapstructure:"command" yaml:"command,flow"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

var displayModes = map[string]bool{
	"fullscreen": true,
	"standalone": true,
	"minimal-ui": true,
	"browser":    true,
}

// Default returns the configuration the original asset set was built with.
func Default() *Config {
	opts := favicon.DefaultOptions()
	return &Config{
		Source:      filepath.ToSlash(opts.Source),
		OutputDir:   opts.OutputDir,
		RasterSizes: opts.RasterSizes,
		ICOSizes:    opts.ICOSizes,
		ICOColors:   opts.ICOColors,
		Background:  opts.Background,
		Manifest: ManifestConfig{
			Name:            opts.Manifest.Name,
			ShortName:       opts.Manifest.ShortName,
			ThemeColor:      opts.Manifest.ThemeColor,
			BackgroundColor: opts.Manifest.BackgroundColor,
			Display:         opts.Manifest.Display,
		},
		Tile:     TileConfig{Color: opts.TileColor},
		Composer: ComposerConfig{Backend: compose.BackendMagick, Command: "magick"},
		Setup:    SetupConfig{Command: append([]string(nil), setup.DefaultCommand...)},
		Watch:    WatchConfig{Debounce: 300 * time.Millisecond},
	}
}

// SetDefaults registers Default() with viper so that unset keys resolve.
func SetDefaults() {
	d := Default()
	viper.SetDefault("source", d.Source)
	viper.SetDefault("output_dir", d.OutputDir)
	viper.SetDefault("raster_sizes", d.RasterSizes)
	viper.SetDefault("ico_sizes", d.ICOSizes)
	viper.SetDefault("ico_colors", d.ICOColors)
	viper.SetDefault("background", d.Background)
	viper.SetDefault("manifest.name", d.Manifest.Name)
	viper.SetDefault("manifest.short_name", d.Manifest.ShortName)
	viper.SetDefault("manifest.theme_color", d.Manifest.ThemeColor)
	viper.SetDefault("manifest.background_color", d.Manifest.BackgroundColor)
	viper.SetDefault("manifest.display", d.Manifest.Display)
	viper.SetDefault("tile.color", d.Tile.Color)
	viper.SetDefault("composer.backend", d.Composer.Backend)
	viper.SetDefault("composer.command", d.Composer.Command)
	viper.SetDefault("setup.command", d.Setup.Command)
	viper.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Load resolves the configuration from viper and validates it.
func Load() (*Config, error) {
	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Space separated lists from the environment arrive as a single string.
	if s := viper.GetString("setup.command"); len(config.Setup.Command) == 1 && strings.Contains(s, " ") {
		config.Setup.Command = strings.Fields(s)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks configuration values for security and correctness.
func Validate(config *Config) error {
	if err := validatePaths(config); err != nil {
		return fmt.Errorf("paths: %w", err)
	}

	if err := validateSizes(config); err != nil {
		return fmt.Errorf("sizes: %w", err)
	}

	if err := validateManifest(&config.Manifest); err != nil {
		return fmt.Errorf("manifest config: %w", err)
	}

	if err := validation.ValidateHexColor(config.Tile.Color); err != nil {
		return fmt.Errorf("tile config: %w", err)
	}

	if _, err := compose.ParseColor(config.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}

	switch config.Composer.Backend {
	case compose.BackendMagick, compose.BackendNative:
	default:
		return fmt.Errorf("composer config: unknown backend %q", config.Composer.Backend)
	}
	if config.Composer.Backend == compose.BackendMagick {
		if err := validation.ValidateArgument(config.Composer.Command); err != nil || config.Composer.Command == "" {
			return fmt.Errorf("composer config: invalid command %q", config.Composer.Command)
		}
	}

	if len(config.Setup.Command) == 0 {
		return fmt.Errorf("setup config: command is empty")
	}

	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch config: negative debounce %s", config.Watch.Debounce)
	}

	return nil
}

func validatePaths(config *Config) error {
	if err := validation.ValidatePath(config.Source); err != nil {
		return fmt.Errorf("invalid source '%s': %w", config.Source, err)
	}
	if err := validation.ValidateFileExtension(config.Source, []string{".svg"}); err != nil {
		return fmt.Errorf("invalid source '%s': %w", config.Source, err)
	}
	if err := validation.ValidatePath(config.OutputDir); err != nil {
		return fmt.Errorf("invalid output_dir '%s': %w", config.OutputDir, err)
	}
	return nil
}

func validateSizes(config *Config) error {
	if len(config.RasterSizes) == 0 {
		return fmt.Errorf("raster_sizes is empty")
	}
	seen := make(map[int]bool, len(config.RasterSizes))
	for _, size := range config.RasterSizes {
		if size <= 0 {
			return fmt.Errorf("raster size %d is not positive", size)
		}
		if seen[size] {
			return fmt.Errorf("raster size %d listed twice", size)
		}
		seen[size] = true
	}

	if len(config.ICOSizes) == 0 {
		return fmt.Errorf("ico_sizes is empty")
	}
	for _, size := range config.ICOSizes {
		// ICO directory entries store dimensions in one byte; 0 means 256.
		if size <= 0 || size > 256 {
			return fmt.Errorf("ico size %d is not in range 1-256", size)
		}
	}

	if config.ICOColors < 2 || config.ICOColors > 256 {
		return fmt.Errorf("ico_colors %d is not in range 2-256", config.ICOColors)
	}

	return nil
}

func validateManifest(config *ManifestConfig) error {
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("name is empty")
	}
	if strings.TrimSpace(config.ShortName) == "" {
		return fmt.Errorf("short_name is empty")
	}
	if err := validation.ValidateHexColor(config.ThemeColor); err != nil {
		return fmt.Errorf("theme_color: %w", err)
	}
	if err := validation.ValidateHexColor(config.BackgroundColor); err != nil {
		return fmt.Errorf("background_color: %w", err)
	}
	if !displayModes[config.Display] {
		return fmt.Errorf("display %q is not one of fullscreen, standalone, minimal-ui, browser", config.Display)
	}
	return nil
}

// GeneratorOptions converts the configuration into generator options.
func (c *Config) GeneratorOptions() favicon.Options {
	return favicon.Options{
		Source:      filepath.FromSlash(c.Source),
		OutputDir:   filepath.FromSlash(c.OutputDir),
		RasterSizes: append([]int(nil), c.RasterSizes...),
		ICOSizes:    append([]int(nil), c.ICOSizes...),
		ICOColors:   c.ICOColors,
		Background:  c.Background,
		Manifest: favicon.ManifestOptions{
			Name:            c.Manifest.Name,
			ShortName:       c.Manifest.ShortName,
			ThemeColor:      c.Manifest.ThemeColor,
			BackgroundColor: c.Manifest.BackgroundColor,
			Display:         c.Manifest.Display,
		},
		TileColor: c.Tile.Color,
	}
}
