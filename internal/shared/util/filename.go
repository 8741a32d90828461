package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidFileName is returned for empty names or names with traversal segments.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// SplitExt returns the base name and the extension without its leading dot.
func SplitExt(name string) (base, ext string) {
	dot := filepath.Ext(name)
	base = strings.TrimSuffix(name, dot)
	return base, strings.TrimPrefix(dot, ".")
}
