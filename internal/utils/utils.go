// Package utils contains general helper functions used across the gather tools.
package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	carriageReturnLineFeed = "\r\n"
	carriageReturn         = "\r"
	lineFeed               = "\n"

	errorAbsolutePathFormat = "resolve absolute path for %s: %w"
	errorDecodeFormat       = "'utf-8' codec can't decode byte 0x%02x in position %d: invalid utf-8 sequence"
)

// DeduplicateNames removes duplicate names from a slice while preserving order.
// The first occurrence of each unique name is kept.
func DeduplicateNames(names []string) []string {
	encounteredNames := make(map[string]struct{})
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, exists := encounteredNames[name]; !exists {
			encounteredNames[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}

// NameSet builds a membership set from names. Blank names are dropped.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return set
}

// AbsoluteCleanPath resolves path against the working directory and cleans it.
func AbsoluteCleanPath(path string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, path, absoluteError)
	}
	return filepath.Clean(absolutePath), nil
}

// DirectoryDisplayName returns the basename used to label a directory.
// A filesystem root has no basename, so the root path itself is returned.
func DirectoryDisplayName(absolutePath string) string {
	baseName := filepath.Base(absolutePath)
	if baseName == "." || baseName == string(filepath.Separator) || baseName == "" {
		return absolutePath
	}
	return baseName
}

// DecodeText interprets data as UTF-8 text and normalizes line endings the way a
// text-mode read does: "\r\n" and a lone "\r" both become "\n".
// Invalid UTF-8 yields an error naming the offending byte and its offset.
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		for position := 0; position < len(data); {
			runeValue, runeSize := utf8.DecodeRune(data[position:])
			if runeValue == utf8.RuneError && runeSize <= 1 {
				return "", fmt.Errorf(errorDecodeFormat, data[position], position)
			}
			position += runeSize
		}
	}
	text := string(data)
	if !strings.Contains(text, carriageReturn) {
		return text, nil
	}
	text = strings.ReplaceAll(text, carriageReturnLineFeed, lineFeed)
	return strings.ReplaceAll(text, carriageReturn, lineFeed), nil
}
