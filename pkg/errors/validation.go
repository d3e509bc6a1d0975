package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest marker label accepted, in runes.
const MaxLabelLength = 200

// ValidateLabel validates a marker label. Labels are free text but must
// not be blank or carry control characters other than plain spaces.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if utf8.RuneCountInString(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidateProgress validates a progress value given by a user.
func ValidateProgress(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return New(ErrCodeInvalidInput, "progress must be a number")
	}
	if p < 0 || p > 1 {
		return New(ErrCodeInvalidInput, "progress must be between 0 and 1, got %g", p)
	}
	return nil
}

// chartNameRegex matches chart names usable as file names and store keys.
var chartNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateChartName validates a chart name. Chart names become file names
// and database keys, so the rules are conservative:
//   - No empty names
//   - Maximum length of 64 characters
//   - Letters, digits, dot, dash and underscore only, not starting with a dot
//   - No path traversal sequences
func ValidateChartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "chart name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "chart name too long (max 64 characters)")
	}

	if strings.Contains(name, "..") || !chartNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid chart name: %q", name)
	}

	return nil
}

// ValidatePath validates an output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
