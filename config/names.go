package config

import (
	"os"
	"strings"
)

// fallbackFileName is used when nothing is left of a name after cleaning.
const fallbackFileName = "_unnamed_page_output_"

// CleanFileName drops characters which cannot appear in a file name on the
// current platform. Leading dots are removed so output never becomes hidden.
func CleanFileName(in string) string {
	drop := forbiddenNameChars + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(drop, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	if out == "" {
		return fallbackFileName
	}
	return out
}
