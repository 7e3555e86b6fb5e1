// Package testutils holds fixtures shared by favicongen tests.
package testutils

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleSVG is a small square icon that oksvg renders without warnings.
const SampleSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 64 64">
  <rect x="0" y="0" width="64" height="64" rx="12" fill="#1E40AF"/>
  <circle cx="32" cy="32" r="16" fill="#ffffff"/>
</svg>
`

// CreateTempProject creates a temporary project with public/favicon.svg and
// returns the project root.
func CreateTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteSVG(t, filepath.Join(dir, "public", "favicon.svg"), SampleSVG)
	return dir
}

// WriteSVG writes content to path, creating parent directories.
func WriteSVG(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// ListFiles returns the sorted names of the regular files in dir.
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
