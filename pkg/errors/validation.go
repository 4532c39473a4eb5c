package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentName validates the display name of a stored mystery.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	const maxNameLength = 128
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "document name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "document name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "document name cannot contain path separators")
	}

	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
