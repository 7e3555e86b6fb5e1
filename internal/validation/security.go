// Package validation provides the input checks applied before favicongen
// hands paths and arguments to external processes or the filesystem.
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// shellMetacharacters are rejected in anything passed to exec, even though
// exec does not go through a shell.
var shellMetacharacters = []string{";", "&", "|", "$", "`", "<", ">", "\x00"}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateArgument validates a command line argument to prevent injection attacks
func ValidateArgument(arg string) error {
	for _, char := range shellMetacharacters {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %q", char)
		}
	}

	for _, part := range strings.Split(filepath.ToSlash(arg), "/") {
		if part == ".." {
			return fmt.Errorf("contains path traversal: %s", arg)
		}
	}

	return nil
}

// ValidateCommand validates a command name against an allowlist
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if !allowedCommands[command] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}

	return nil
}

// ValidatePath validates a configured project path. Relative paths must stay
// inside the working tree.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) && (cleanPath == ".." || strings.HasPrefix(filepath.ToSlash(cleanPath), "../")) {
		return fmt.Errorf("path traversal detected: %s", path)
	}

	for _, char := range shellMetacharacters {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %q", char)
		}
	}

	return nil
}

// ValidateHexColor accepts #rgb and #rrggbb colors.
func ValidateHexColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return fmt.Errorf("invalid hex color %q (expected #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidateFileExtension validates file extensions against an allowlist
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("file extension '%s' is not allowed", ext)
}
