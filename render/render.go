// Package render implements output backends driven by the page scheduler.
package render

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"pageflow/area"
	"pageflow/common"
)

// Options controls renderer output.
type Options struct {
	// Indent is the number of spaces used to indent XML output, 0 disables
	// indentation.
	Indent int
	// UnresolvedText replaces page labels of references which were never
	// defined in the document.
	UnresolvedText string
	// Compress enables deflate for container entries.
	Compress bool

	ID       string
	Title    string
	Language language.Tag
}

// New creates renderer for requested output format writing to w.
func New(format common.OutputFmt, w io.Writer, opts Options, log *zap.Logger) (area.Renderer, error) {
	switch format {
	case common.OutputFmtXml:
		return newXMLRenderer(w, opts, log), nil
	case common.OutputFmtIon:
		return newIonRenderer(w, opts, log), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// label returns text to show for a reference area.
func label(a *area.Area, unresolved string) string {
	switch a.Status {
	case area.ResolutionResolved:
		return a.Label
	case area.ResolutionNeverDefined:
		return unresolved
	default:
		return ""
	}
}
