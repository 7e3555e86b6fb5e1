package setup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInstaller_Defaults(t *testing.T) {
	inst := NewInstaller(nil, nil)
	assert.Equal(t, DefaultCommand, inst.Command)
	assert.NotNil(t, inst.Out)
}

func TestInstallPackages_Success(t *testing.T) {
	var out bytes.Buffer
	inst := NewInstaller(nil, &out)

	var gotName string
	var gotArgs []string
	inst.run = func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
		gotName, gotArgs = name, args
		return nil
	}

	assert.True(t, inst.InstallPackages(context.Background()))
	assert.Equal(t, "go", gotName)
	assert.Equal(t, []string{"mod", "download"}, gotArgs)
	assert.Contains(t, out.String(), "Installing required packages...")
	assert.Contains(t, out.String(), "Successfully installed required packages!")
	assert.NotContains(t, out.String(), "ImageMagick")
}

func TestInstallPackages_FailurePrintsInstructions(t *testing.T) {
	var out bytes.Buffer
	inst := NewInstaller(nil, &out)
	inst.run = func(context.Context, string, []string, io.Writer, io.Writer) error {
		return errors.New("exit status 1")
	}

	assert.False(t, inst.InstallPackages(context.Background()))
	assert.Contains(t, out.String(), "Please install them manually:")
	assert.Contains(t, out.String(), "go mod download")
	assert.Contains(t, out.String(), "make sure you have ImageMagick installed")
}

func TestInstallPackages_RejectsUnknownInstaller(t *testing.T) {
	var out bytes.Buffer
	inst := NewInstaller([]string{"curl", "http://example.com/install.sh"}, &out)
	called := false
	inst.run = func(context.Context, string, []string, io.Writer, io.Writer) error {
		called = true
		return nil
	}

	assert.False(t, inst.InstallPackages(context.Background()))
	assert.False(t, called)
	assert.Contains(t, out.String(), "not allowed")
}

func TestInstallPackages_RejectsInjectedArgument(t *testing.T) {
	var out bytes.Buffer
	inst := NewInstaller([]string{"go", "mod", "download; rm -rf ~"}, &out)
	inst.run = func(context.Context, string, []string, io.Writer, io.Writer) error {
		t.Fatal("runner must not be called")
		return nil
	}

	assert.False(t, inst.InstallPackages(context.Background()))
}
