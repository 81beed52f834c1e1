package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ValidateClusterID validates a cluster identifier taken from user input.
// Identifiers end up in cache keys and output file names, so the rules are
// conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateClusterID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "cluster id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "cluster id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "cluster id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "cluster id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates an output path base given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateFormats checks that every requested format is one of allowed.
// Empty entries and duplicates are rejected.
func ValidateFormats(formats []string, allowed ...string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "no output format given")
	}
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if seen[f] {
			return New(ErrCodeInvalidFormat, "duplicate format %q", f)
		}
		seen[f] = true
		if !slices.Contains(allowed, f) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", f, strings.Join(allowed, ", "))
		}
	}
	return nil
}
