// Package cmd provides the command-line interface for favicongen.
//
// Configuration System:
//
//	Values resolve with this precedence, highest first:
//	1. Command-line flags (--source, --output, --backend, ...)
//	2. Individual environment variables (FAVICONGEN_OUTPUT_DIR, ...)
//	3. The configuration file: --config, else FAVICONGEN_CONFIG_FILE,
//	   else .favicongen.yml in the current directory
//	4. Built-in defaults
//
// Environment Variables:
//
//	FAVICONGEN_CONFIG_FILE: Path to custom configuration file
//	FAVICONGEN_SOURCE: Override the source SVG
//	FAVICONGEN_OUTPUT_DIR: Override the output directory
//	FAVICONGEN_COMPOSER_BACKEND: magick or native
//	And the rest following the FAVICONGEN_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "favicongen",
	Short: "Generate a favicon asset bundle from one SVG",
	Long: `favicongen turns a single SVG into the favicon set browsers and
platforms expect: favicon.ico, apple-touch-icon.png, Android Chrome icons,
an MS tile, site.webmanifest and browserconfig.xml.

Quick Start:
  favicongen setup       Download the modules the generator needs
  favicongen doctor      Check ImageMagick and the project layout
  favicongen generate    Write the assets into the output directory
  favicongen snippet     Print the <head> tags for the assets`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .favicongen.yml, can also use FAVICONGEN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log-level":  "log-level",
		"log-format": "log-format",
	})
}

// bindFlags binds each flag name to its viper key so that a flag set on the
// command line overrides the environment and the config file.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if flag := flags.Lookup(name); flag != nil {
			viper.BindPFlag(key, flag)
		}
	}
}

// initConfig picks the configuration file: --config, then
// FAVICONGEN_CONFIG_FILE, then .favicongen.yml in the working directory. A
// missing file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FAVICONGEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".favicongen")
	}

	config.BindEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the command logger from --log-level and --log-format. An
// unknown level falls back to warn.
func newLogger() logging.Logger {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logging.LevelWarn
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    viper.GetString("log-format"),
		Output:    os.Stderr,
		Component: "favicongen",
	})
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
