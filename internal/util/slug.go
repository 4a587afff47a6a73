package util

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a section or category name to kebab-case for file names
// and generated class names.
func Slugify(input string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(input), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "section"
	}
	return slug
}

// ExportFileName is the file name used when an export is downloaded.
func ExportFileName(exportID string) string {
	if exportID == "" {
		return "brixies-export.json"
	}
	return "brixies-export-" + exportID + ".json"
}
