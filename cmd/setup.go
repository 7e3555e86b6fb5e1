package cmd

import (
	"errors"
	"fmt"

	"github.com/nethravigil/favicongen/internal/config"
	"github.com/nethravigil/favicongen/internal/setup"
	"github.com/spf13/cobra"
)

var errSetupFailed = errors.New("package installation failed")

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Download the modules the generator needs",
	Long: `Run the configured install command (default: go mod download) and
print the next step. ImageMagick is not installed by this command; use
'favicongen doctor' to check for it.

Exits with status 1 when installation fails.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	command := setup.DefaultCommand
	if cfg, err := config.Load(); err == nil {
		command = cfg.Setup.Command
	}

	out := cmd.OutOrStdout()
	installer := setup.NewInstaller(command, out)
	if !installer.InstallPackages(commandContext(cmd)) {
		return errSetupFailed
	}

	fmt.Fprintln(out, "\nRun the following command to generate the favicon:")
	fmt.Fprintln(out, "favicongen generate")
	return nil
}
