// Package composetest provides a recording compose.Composer for tests that
// must run without ImageMagick.
package composetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nethravigil/favicongen/internal/compose"
)

// FakeComposer records every request and writes a copy of the first input
// to the output path.
type FakeComposer struct {
	// FailOn maps an output base name to the error Compose returns for it.
	FailOn map[string]error

	mu       sync.Mutex
	requests []compose.Request
}

// New returns an empty FakeComposer.
func New() *FakeComposer {
	return &FakeComposer{FailOn: make(map[string]error)}
}

// Compose implements compose.Composer.
func (f *FakeComposer) Compose(ctx context.Context, req compose.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := req.Validate(); err != nil {
		return "", err
	}
	if err, ok := f.FailOn[filepath.Base(req.Output)]; ok {
		return "", err
	}

	data, err := os.ReadFile(req.Inputs[0])
	if err != nil {
		return "", fmt.Errorf("fake compose %s: %w", req.Output, err)
	}
	if err := os.WriteFile(req.Output, data, 0644); err != nil {
		return "", err
	}
	return req.Output, nil
}

// Requests returns a copy of the recorded requests in call order.
func (f *FakeComposer) Requests() []compose.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]compose.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Outputs returns the base names of the recorded request outputs.
func (f *FakeComposer) Outputs() []string {
	reqs := f.Requests()
	names := make([]string, len(reqs))
	for i, r := range reqs {
		names[i] = filepath.Base(r.Output)
	}
	return names
}
