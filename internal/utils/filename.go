package utils

import (
	"regexp"
	"strings"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"\\|?*\x00-\x1f]`)
	// Zero-width marks the catalogue sprinkles into names
	zeroWidthChars = regexp.MustCompile("[\u200b\u200c\u200d\u200e\u200f\ufeff]")
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a learning map or category name into a single
// path element. Slashes become dashes so "SASE/SSE" stays readable.
func SanitizeFilename(filename string) string {
	filename = zeroWidthChars.ReplaceAllString(filename, "")

	// Tabs and newlines collapse with the other whitespace below
	filename = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(filename)
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = strings.ReplaceAll(filename, "/", "-")

	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)
	filename = strings.Trim(filename, ".")

	// Limit length (most filesystems support 255, but leave room for extension)
	if len(filename) > 200 {
		filename = strings.TrimSpace(filename[:200])
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}
