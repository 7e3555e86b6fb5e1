// Package setup installs the modules the generator is built from and tells
// the user how to finish the environment by hand when that fails.
package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/nethravigil/favicongen/internal/validation"
)

// DefaultCommand downloads the generator's module dependencies, which include
// the SVG rasterizer.
var DefaultCommand = []string{"go", "mod", "download"}

var allowedInstallers = map[string]bool{
	"go": true,
}

// Runner executes an install command, streaming its output.
type Runner func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

// Installer runs the package installation step.
type Installer struct {
	Command []string
	Out     io.Writer
	run     Runner
}

// NewInstaller creates an installer for command (DefaultCommand when empty)
// that prints to out (stdout when nil).
func NewInstaller(command []string, out io.Writer) *Installer {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if out == nil {
		out = os.Stdout
	}
	return &Installer{Command: command, Out: out, run: execRunner}
}

func execRunner(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// InstallPackages runs the install command. It reports failure as false after
// printing manual installation instructions; it never returns an error.
func (i *Installer) InstallPackages(ctx context.Context) bool {
	fmt.Fprintln(i.Out, "Installing required packages...")

	if err := i.validate(); err != nil {
		fmt.Fprintf(i.Out, "Refusing to run install command: %v\n", err)
		i.printManualInstructions()
		return false
	}

	if err := i.run(ctx, i.Command[0], i.Command[1:], i.Out, i.Out); err != nil {
		i.printManualInstructions()
		return false
	}

	fmt.Fprintln(i.Out, "Successfully installed required packages!")
	return true
}

func (i *Installer) validate() error {
	if len(i.Command) == 0 {
		return fmt.Errorf("install command is empty")
	}
	if err := validation.ValidateCommand(i.Command[0], allowedInstallers); err != nil {
		return err
	}
	for _, arg := range i.Command[1:] {
		if err := validation.ValidateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument '%s': %w", arg, err)
		}
	}
	return nil
}

func (i *Installer) printManualInstructions() {
	fmt.Fprintln(i.Out, "Failed to install required packages. Please install them manually:")
	fmt.Fprintln(i.Out, strings.Join(i.Command, " "))
	fmt.Fprintln(i.Out, "Also, make sure you have ImageMagick installed on your system.")
}
