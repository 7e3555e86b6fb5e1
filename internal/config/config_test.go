package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nethravigil/favicongen/internal/favicon"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "defaults",
			setup: func() { viper.Reset() },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "custom output and sizes",
			setup: func() {
				viper.Reset()
				viper.Set("output_dir", "dist/icons")
				viper.Set("raster_sizes", []int{16, 32, 48, 64, 150, 180, 192, 512})
				viper.Set("composer.backend", "native")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "dist/icons", cfg.OutputDir)
				assert.Equal(t, []int{16, 32, 48, 64, 150, 180, 192, 512}, cfg.RasterSizes)
				assert.Equal(t, "native", cfg.Composer.Backend)
			},
		},
		{
			name: "manifest overrides",
			setup: func() {
				viper.Reset()
				viper.Set("manifest.name", "Acme Console")
				viper.Set("manifest.short_name", "Acme")
				viper.Set("manifest.display", "minimal-ui")
				viper.Set("watch.debounce", "1s")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "Acme Console", cfg.Manifest.Name)
				assert.Equal(t, "Acme", cfg.Manifest.ShortName)
				assert.Equal(t, "minimal-ui", cfg.Manifest.Display)
				assert.Equal(t, time.Second, cfg.Watch.Debounce)
				assert.Equal(t, "#1E40AF", cfg.Manifest.ThemeColor)
			},
		},
		{
			name: "invalid ico_colors type",
			setup: func() {
				viper.Reset()
				viper.Set("ico_colors", "lots")
			},
			expectError: true,
		},
		{
			name: "invalid display",
			setup: func() {
				viper.Reset()
				viper.Set("manifest.display", "kiosk")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			cfg, err := Load()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `source: assets/logo.svg
output_dir: static
raster_sizes: [16, 32, 48, 64, 150, 180, 192, 512]
manifest:
  name: Nethra Vigil
  short_name: Nethra
tile:
  color: "#000000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "assets/logo.svg", cfg.Source)
	assert.Equal(t, "static", cfg.OutputDir)
	assert.Equal(t, "#000000", cfg.Tile.Color)
	assert.Equal(t, []int{16, 32, 48, 64}, cfg.ICOSizes)
}

func TestLoad_Environment(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	t.Setenv("FAVICONGEN_OUTPUT_DIR", "web")
	t.Setenv("FAVICONGEN_SETUP_COMMAND", "go mod download -x")
	BindEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.OutputDir)
	assert.Equal(t, []string{"go", "mod", "download", "-x"}, cfg.Setup.Command)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"path traversal in source", func(c *Config) { c.Source = "../secret.svg" }},
		{"non svg source", func(c *Config) { c.Source = "public/logo.png" }},
		{"dangerous output dir", func(c *Config) { c.OutputDir = "public;rm -rf /" }},
		{"empty raster sizes", func(c *Config) { c.RasterSizes = nil }},
		{"negative raster size", func(c *Config) { c.RasterSizes = []int{16, -32} }},
		{"duplicate raster size", func(c *Config) { c.RasterSizes = []int{16, 16} }},
		{"ico size too large", func(c *Config) { c.ICOSizes = []int{512} }},
		{"too many colors", func(c *Config) { c.ICOColors = 1024 }},
		{"bad theme color", func(c *Config) { c.Manifest.ThemeColor = "blue" }},
		{"empty name", func(c *Config) { c.Manifest.Name = " " }},
		{"bad tile color", func(c *Config) { c.Tile.Color = "#12" }},
		{"bad background", func(c *Config) { c.Background = "mauve" }},
		{"unknown backend", func(c *Config) { c.Composer.Backend = "gimp" }},
		{"injected command", func(c *Config) { c.Composer.Command = "magick;ls" }},
		{"empty setup command", func(c *Config) { c.Setup.Command = nil }},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
	}

	require.NoError(t, Validate(Default()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestGeneratorOptions(t *testing.T) {
	opts := Default().GeneratorOptions()
	defaults := favicon.DefaultOptions()

	assert.Equal(t, defaults.Source, opts.Source)
	assert.Equal(t, defaults.OutputDir, opts.OutputDir)
	assert.Equal(t, defaults.RasterSizes, opts.RasterSizes)
	assert.Equal(t, defaults.ICOSizes, opts.ICOSizes)
	assert.Equal(t, defaults.Manifest, opts.Manifest)
	assert.Equal(t, defaults.TileColor, opts.TileColor)
	assert.Equal(t, "white", opts.Background)
}
