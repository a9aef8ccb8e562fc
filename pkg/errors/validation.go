package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// maxFilenameLength bounds uploaded file names.
const maxFilenameLength = 255

// ValidateTreeFilename validates the name of a user-selected tree document.
// The file picker only accepts .json files; the same rule is enforced
// server-side so a hand-crafted upload cannot bypass it.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators (must be a basename)
//   - Extension must be .json (case-insensitive)
func ValidateTreeFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "file name cannot be empty")
	}

	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidInput, "file name too long (max %d characters)", maxFilenameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "file name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "file name cannot contain path separators")
	}

	if !strings.EqualFold(filepath.Ext(name), ".json") {
		return New(ErrCodeInvalidFormat, "only .json files are supported: %q", name)
	}

	return nil
}

// hexColorRegex matches #rgb and #rrggbb colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a CSS hex color as used for node and edge fills.
// Named colors are not accepted because both Graphviz and the browser
// canvas must agree on the value.
func ValidateColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidConfig, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}
