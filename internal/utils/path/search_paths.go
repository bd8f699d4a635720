package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// SearchPathSanitizer normalizes configured directory lists such as module and package search paths.
type SearchPathSanitizer struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewSearchPathSanitizer constructs a sanitizer that expands "~" using the operating system lookup.
func NewSearchPathSanitizer() *SearchPathSanitizer {
	return NewSearchPathSanitizerWithProvider(os.UserHomeDir)
}

// NewSearchPathSanitizerWithProvider constructs a sanitizer with a custom home directory provider.
func NewSearchPathSanitizerWithProvider(provider HomeDirectoryProvider) *SearchPathSanitizer {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &SearchPathSanitizer{homeDirectoryProvider: provider}
}

// Sanitize trims whitespace, expands the home directory, cleans each path, and drops blanks and duplicates.
// The original order is preserved.
func (sanitizer *SearchPathSanitizer) Sanitize(candidatePaths []string) []string {
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	seen := make(map[string]struct{}, len(candidatePaths))

	for _, candidatePath := range candidatePaths {
		sanitizedPath := sanitizer.SanitizePath(candidatePath)
		if len(sanitizedPath) == 0 {
			continue
		}
		if _, alreadySeen := seen[sanitizedPath]; alreadySeen {
			continue
		}
		seen[sanitizedPath] = struct{}{}
		sanitizedPaths = append(sanitizedPaths, sanitizedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}

	return sanitizedPaths
}

// SanitizePath normalizes a single path; blank input yields an empty string.
func (sanitizer *SearchPathSanitizer) SanitizePath(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	return filepath.Clean(sanitizer.expand(trimmedPath))
}

func (sanitizer *SearchPathSanitizer) expand(candidatePath string) string {
	if sanitizer == nil {
		return candidatePath
	}
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := sanitizer.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (sanitizer *SearchPathSanitizer) resolveHomeDirectory() string {
	sanitizer.initializationGuard.Do(func() {
		sanitizer.homeDirectory, sanitizer.homeDirectoryError = sanitizer.homeDirectoryProvider()
	})
	if sanitizer.homeDirectoryError != nil {
		return ""
	}
	return sanitizer.homeDirectory
}
