package compose

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/nethravigil/favicongen/internal/validation"
)

// allowedCommands are the ImageMagick entry points MagickComposer will run.
// "convert" is the ImageMagick 6 name; "magick" is ImageMagick 7.
var allowedCommands = map[string]bool{
	"magick":  true,
	"convert": true,
}

// MagickComposer runs ImageMagick to compose images.
type MagickComposer struct {
	command  string
	lookPath func(string) (string, error)
}

// NewMagickComposer creates a composer that invokes command ("magick" when empty).
func NewMagickComposer(command string) *MagickComposer {
	if command == "" {
		command = "magick"
	}
	return &MagickComposer{
		command:  command,
		lookPath: exec.LookPath,
	}
}

// Command returns the executable name the composer runs.
func (mc *MagickComposer) Command() string {
	return mc.command
}

// Compose runs one ImageMagick conversion and blocks until it exits.
func (mc *MagickComposer) Compose(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	args := mc.Args(req)
	if err := mc.validateCommand(args); err != nil {
		return "", fmt.Errorf("command validation failed: %w", err)
	}

	path, err := mc.lookPath(mc.command)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolNotFound, mc.command, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s %s cancelled: %w", mc.command, req.Output, ctx.Err())
		}
		return "", fmt.Errorf("%s failed for %s: %w\nOutput: %s", mc.command, req.Output, err, output)
	}

	return req.Output, nil
}

// Args builds the ImageMagick argument list for req.
//
//	magick convert in.png -background white -gravity center -extent 180x180 out.png
//	magick convert a.png b.png -colors 256 out.ico
func (mc *MagickComposer) Args(req Request) []string {
	args := make([]string, 0, len(req.Inputs)+10)
	if mc.command == "magick" {
		args = append(args, "convert")
	}
	args = append(args, req.Inputs...)

	if req.Background != "" {
		args = append(args, "-background", req.Background)
	}
	if req.Size > 0 {
		extent := strconv.Itoa(req.Size)
		args = append(args, "-gravity", "center", "-extent", extent+"x"+extent)
	}
	if req.Colors > 0 {
		args = append(args, "-colors", strconv.Itoa(req.Colors))
	}

	return append(args, req.Output)
}

func (mc *MagickComposer) validateCommand(args []string) error {
	if err := validation.ValidateCommand(mc.command, allowedCommands); err != nil {
		return err
	}

	for _, arg := range args {
		if err := validation.ValidateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument '%s': %w", arg, err)
		}
	}

	return nil
}
