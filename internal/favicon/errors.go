package favicon

import (
	"errors"
	"fmt"
)

// ErrRasterMissing is returned when a compose step needs a raster size that
// the rasterization step did not produce.
var ErrRasterMissing = errors.New("input raster missing")

// Stage names the pipeline step a StageError came from.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageRead      Stage = "read"
	StageRasterize Stage = "rasterize"
	StageCompose   Stage = "compose"
	StageWrite     Stage = "write"
	StageCleanup   Stage = "cleanup"
)

// StageError is a fatal generation failure tied to one pipeline stage and
// the file it was working on.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, path string, err error) error {
	return &StageError{Stage: stage, Path: path, Err: err}
}
