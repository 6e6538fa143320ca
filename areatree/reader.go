// Package areatree reads area tree produced by the layout pass and replays it
// as a sequence of events for the area tree handler.
package areatree

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const rootTag = "areaTree"

// Document is a parsed area tree ready to be fed to the handler. Document
// could be fed only once, page elements are released while feeding.
type Document struct {
	ID       string
	Title    string
	Language language.Tag

	// Statistics collected when document was read.
	Sequences    int
	Pages        int
	Bookmarks    int
	Destinations int
	Extensions   int

	doc  *etree.Document
	log  *zap.Logger
	used bool
}

// Read parses area tree from r. Document ID is normalized to a valid UUID,
// language is parsed if present.
func Read(r io.Reader, log *zap.Logger) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charsetReader,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read area tree: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != rootTag {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	d := &Document{
		ID:       root.SelectAttrValue("id", ""),
		Title:    strings.TrimSpace(root.SelectAttrValue("title", "")),
		Language: parseLang(root.SelectAttrValue("lang", ""), log),
		doc:      doc,
		log:      log,
	}

	// Make sure document ID is not empty and is valid UUID
	if _, err := uuid.Parse(d.ID); err != nil {
		refID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("unable to generate new document UUID: %w", err)
		}
		log.Warn("Document has invalid ID, correcting", zap.String("old_id", d.ID), zap.Stringer("new_id", refID))
		d.ID = refID.String()
	}

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "pageSequence":
			d.Sequences++
			d.Pages += len(child.SelectElements("page"))
		case "page":
			d.Pages++
		case "bookmarkTree":
			d.Bookmarks += countBookmarks(child)
		case "destination":
			d.Destinations++
		case "extension":
			d.Extensions++
		}
	}
	return d, nil
}

// charsetReader trusts declared encoding except for wide Unicode forms: by the
// time declaration is seen such input was already transcoded from its BOM.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch l := strings.ToLower(strings.TrimSpace(label)); {
	case strings.HasPrefix(l, "utf-16"), strings.HasPrefix(l, "utf-32"), l == "ucs-2":
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

func countBookmarks(el *etree.Element) int {
	n := 0
	for _, child := range el.SelectElements("bookmark") {
		n += 1 + countBookmarks(child)
	}
	return n
}

func parseLang(in string, log *zap.Logger) language.Tag {
	lang := strings.TrimSpace(in)
	if lang == "" {
		return language.Und
	}

	tag, err := language.Parse(lang)
	if err == nil {
		return tag
	}

	// last resort - try names directly
	for _, supportedTag := range display.Supported.Tags() {
		if strings.EqualFold(display.Self.Name(supportedTag), lang) {
			return supportedTag
		}
	}
	log.Warn("Unable to parse document language", zap.String("lang", lang))
	return language.Und
}
