package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

const maxLen = 64

func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// FromFileName slugs the base name of path without its extension.
func FromFileName(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return Make(strings.TrimSuffix(base, filepath.Ext(base)))
}
