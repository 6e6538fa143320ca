// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// Options select archive entries visited by Walk.
type Options struct {
	// Prefix entry name has to start with, empty matches everything.
	Prefix string
	// Match is an optional additional filter applied to decoded entry name.
	Match func(name string) bool
	// CodePage is used to decode entry names not marked as UTF-8. Zip
	// "standard" does not define name encoding and old archives often use
	// local code pages.
	CodePage encoding.Encoding
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, name is the entry name decoded according to Options. If an error is
// returned, processing stops.
type WalkFunc func(archive, name string, file *zip.File) error

// Walk walks the all files in the archive which satisfy options, calling
// walkFn for each item. Archive with entries containing path traversal
// components ("..") or absolute paths is rejected to prevent Zip Slip attacks.
func Walk(archive string, opts Options, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := decodeName(f, opts.CodePage)
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		if opts.Match != nil && !opts.Match(name) {
			continue
		}
		if err := walkFn(archive, name, f); err != nil {
			return err
		}
	}
	return nil
}

// decodeName returns entry name, converting it from code page when entry is
// not marked as UTF-8. Name is returned as is if conversion fails.
func decodeName(f *zip.File, cp encoding.Encoding) string {
	name := f.FileHeader.Name
	if cp == nil || !f.FileHeader.NonUTF8 {
		return name
	}
	if n, err := cp.NewDecoder().String(name); err == nil {
		return n
	}
	return name
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
