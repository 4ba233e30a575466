package errors

import (
	"strings"
	"unicode"
)

// ValidateModID validates a mod id before it is used as an archive file name.
// Ids come from the last path segment of a URL, so anything that could
// escape the mods directory is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateModID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPackage, "mod id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidPackage, "mod id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "mod id contains invalid control characters")
		}
	}

	if id == "." || id == ".." {
		return New(ErrCodeInvalidPackage, "mod id cannot be %q", id)
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPackage, "mod id contains invalid characters: %q", pattern)
		}
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
