package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	separators  = regexp.MustCompile(`[_\s-]+`)
	dateSegment = regexp.MustCompile(`^\d{8}$`)
	yearPattern = regexp.MustCompile(`20\d{2}`)
	leadingDate = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})[_-](.+)$`)
)

// ExtractToken derives the document-type token from a filename: extension
// removed, separators collapsed to single spaces, 8-digit date segments
// discarded.
func ExtractToken(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	var kept []string
	for _, part := range separators.Split(stem, -1) {
		if part == "" || dateSegment.MatchString(part) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, " ")
}

// ExtractYear returns the first 4-digit 20xx substring of the filename,
// or "" when the name carries no recognizable year.
func ExtractYear(filename string) string {
	return yearPattern.FindString(filename)
}

// FormatFilename rewrites a leading YYYYMMDD date (followed by _ or -)
// into "YYYY-MM-DD rest". Filenames without that shape pass through
// unchanged.
func FormatFilename(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	m := leadingDate.FindStringSubmatch(stem)
	if m == nil {
		return filename
	}
	return fmt.Sprintf("%s-%s-%s %s%s", m[1], m[2], m[3], m[4], ext)
}
