package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// labelRegex matches element labels the tracer's input format accepts:
// a leading letter or digit followed by letters, digits, dots, dashes or
// underscores.
var labelRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// MaxLabelLength is the longest element label the tracer carries through
// its output tables. Longer labels would be truncated there and break the
// track-to-element matching on the way back.
const MaxLabelLength = 10

// ValidateLabel validates an element label for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - Maximum length of MaxLabelLength characters
//   - No control characters or whitespace (the input format is
//     whitespace-delimited)
//   - Letters, digits, dots, dashes and underscores only
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "element label cannot be empty")
	}

	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "element label %q too long (max %d characters)", label, MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidLabel, "element label %q contains whitespace or control characters", label)
		}
	}

	if !labelRegex.MatchString(label) {
		return New(ErrCodeInvalidLabel, "invalid element label: %q", label)
	}

	return nil
}

// ValidateAlignment validates a positioning mode for a straight-axis
// element. The tracer knows modes 0 through 3.
func ValidateAlignment(mode int) error {
	if mode < 0 || mode > 3 {
		return New(ErrCodeInvalidAlignment, "positioning mode must be between 0 and 3, got %d", mode)
	}
	return nil
}

// ValidatePolarAlignment validates a positioning mode for a polar element.
// Polar elements only support modes 1 and 2.
func ValidatePolarAlignment(mode int) error {
	if mode != 1 && mode != 2 {
		return New(ErrCodeInvalidAlignment, "polar positioning mode must be 1 or 2, got %d", mode)
	}
	return nil
}

// ValidateFilename validates a work-dir filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	// No hidden files (starting with .)
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	return nil
}

// ValidateOutputPath validates a path the CLI or server will write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
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

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
