package areatree

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"pageflow/area"
)

// Handler receives area tree events. *area.Handler satisfies it.
type Handler interface {
	StartPageSequence(seq *area.PageSequence)
	EndPageSequence()
	AddIDDefinition(id string, pv *area.PageViewport)
	AddPageReferences(pv *area.PageViewport)
	AddPage(pv *area.PageViewport)
	SetOutline(o *area.Outline)
	AddDestination(id string)
	AddOffDocumentItem(item area.OffDocumentItem)
}

var ErrConsumed = errors.New("area tree was already fed")

// feeder keeps state of a single pass over the document.
type feeder struct {
	h     Handler
	log   *zap.Logger
	keys  map[area.Key]bool
	pages int
	// page number within current sequence
	number int
}

// Feed replays document into h in document order. Every page is handed over
// as soon as it is built and its element is dropped from the tree.
func (d *Document) Feed(ctx context.Context, h Handler) error {
	if d.used {
		return ErrConsumed
	}
	d.used = true

	f := &feeder{h: h, log: d.log, keys: make(map[area.Key]bool)}
	root := d.doc.Root()
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "pageSequence":
			if err := f.sequence(ctx, child); err != nil {
				return err
			}
		case "page":
			if err := f.page(ctx, root, child); err != nil {
				return err
			}
		case "bookmarkTree":
			h.SetOutline(&area.Outline{Bookmarks: parseBookmarks(child)})
		case "destination":
			if ref := child.SelectAttrValue("ref", ""); len(ref) > 0 {
				h.AddDestination(ref)
			} else {
				d.log.Warn("Destination without reference, ignoring")
			}
		case "extension":
			h.AddOffDocumentItem(f.extension(child))
		default:
			d.log.Warn("Unexpected tag in area tree, ignoring", zap.String("parent", root.Tag), zap.String("tag", child.Tag))
		}
	}
	h.EndPageSequence()
	return nil
}

func (f *feeder) sequence(ctx context.Context, el *etree.Element) error {
	f.h.StartPageSequence(&area.PageSequence{
		Title:    el.SelectAttrValue("title", ""),
		Language: el.SelectAttrValue("lang", ""),
	})
	f.number = 0
	for _, child := range el.ChildElements() {
		if child.Tag != "page" {
			f.log.Warn("Unexpected tag in page sequence, ignoring", zap.String("tag", child.Tag))
			continue
		}
		if err := f.page(ctx, el, child); err != nil {
			return err
		}
	}
	f.h.EndPageSequence()
	return nil
}

func (f *feeder) page(ctx context.Context, parent, el *etree.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.pages++
	f.number++

	pv, err := f.buildPage(el)
	if err != nil {
		return fmt.Errorf("page %d: %w", f.pages, err)
	}
	parent.RemoveChild(el)

	for _, id := range pv.Page().IDs() {
		f.h.AddIDDefinition(id, pv)
	}
	f.h.AddPageReferences(pv)
	f.h.AddPage(pv)
	return nil
}

func (f *feeder) pageKey(el *etree.Element) area.Key {
	key := area.Key(el.SelectAttrValue("key", ""))
	if len(key) > 0 && !f.keys[key] {
		f.keys[key] = true
		return key
	}
	if len(key) > 0 {
		f.log.Warn("Duplicate page key, generating new one", zap.String("key", string(key)))
	}
	for i := f.pages; ; i++ {
		key = area.Key(fmt.Sprintf("page-%d", i))
		if !f.keys[key] {
			f.keys[key] = true
			return key
		}
	}
}

func (f *feeder) buildPage(el *etree.Element) (*area.PageViewport, error) {
	number := f.number
	if v := el.SelectAttr("number"); v != nil {
		n, err := strconv.Atoi(strings.TrimSpace(v.Value))
		if err != nil {
			return nil, fmt.Errorf("bad page number %q: %w", v.Value, err)
		}
		number = n
	}

	var rect area.Rect
	for _, a := range []struct {
		name string
		dst  *float64
	}{
		{"x", &rect.X}, {"y", &rect.Y}, {"width", &rect.Width}, {"height", &rect.Height},
	} {
		v := el.SelectAttr(a.name)
		if v == nil {
			continue
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad page %s %q: %w", a.name, v.Value, err)
		}
		*a.dst = val
	}

	content := &area.Page{}
	type markerSet struct {
		marks           area.Markers
		starting, first bool
	}
	var markers []markerSet
	for _, child := range el.ChildElements() {
		if child.Tag == "markers" {
			markers = append(markers, markerSet{
				marks:    f.parseMarkers(child),
				starting: parseBool(child.SelectAttrValue("starting", "")),
				first:    parseBool(child.SelectAttrValue("first", "")),
			})
		}
	}
	content.Regions = f.parseAreas(el)

	pv := area.NewPageViewport(f.pageKey(el), number, el.SelectAttrValue("label", ""), content)
	pv.SetMaster(el.SelectAttrValue("master", ""))
	pv.SetBlank(parseBool(el.SelectAttrValue("blank", "")))
	pv.SetViewArea(rect)
	for _, m := range markers {
		pv.AddMarkers(m.marks, m.starting, m.first)
	}
	return pv, nil
}

// parseAreas builds content areas from el children. Markers are not content
// and are skipped.
func (f *feeder) parseAreas(el *etree.Element) []*area.Area {
	var list []*area.Area
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if text := strings.TrimSpace(t.Data); len(text) > 0 {
				list = append(list, area.NewText(text))
			}
		case *etree.Element:
			if a := f.parseArea(t); a != nil {
				list = append(list, a)
			}
		}
	}
	return list
}

func (f *feeder) parseArea(el *etree.Element) *area.Area {
	var a *area.Area
	switch el.Tag {
	case "block", "region", "inline":
		a = area.NewBlock(el.SelectAttrValue("id", ""), f.parseAreas(el)...)
	case "link":
		a = area.NewLink(el.SelectAttrValue("ref", ""), f.parseAreas(el)...)
		a.ID = el.SelectAttrValue("id", "")
	case "citation":
		a = area.NewCitation(el.SelectAttrValue("ref", ""), parseBool(el.SelectAttrValue("last", "")))
		a.ID = el.SelectAttrValue("id", "")
	case "citation-last":
		a = area.NewCitation(el.SelectAttrValue("ref", ""), true)
		a.ID = el.SelectAttrValue("id", "")
	case "retrieve-marker":
		a = area.NewRetrieveMarker(el.SelectAttrValue("class", ""), f.retrievePosition(el))
		if len(a.Class) == 0 {
			f.log.Warn("Marker retrieval without class, nothing will be retrieved")
		}
	case "markers":
		return nil
	default:
		f.log.Warn("Unexpected area, treating as block", zap.String("tag", el.Tag))
		a = area.NewBlock(el.SelectAttrValue("id", ""), f.parseAreas(el)...)
	}
	if (a.Kind == area.AreaKindLink || a.Kind == area.AreaKindCitation || a.Kind == area.AreaKindCitationLast) && len(a.Ref) == 0 {
		f.log.Warn("Reference area without target", zap.String("tag", el.Tag))
	}
	return a
}

func (f *feeder) retrievePosition(el *etree.Element) area.RetrievePosition {
	v := el.SelectAttrValue("position", "")
	if len(v) == 0 {
		return area.RetrievePositionFirstStarting
	}
	pos, err := area.ParseRetrievePosition(v)
	if err != nil {
		f.log.Warn("Unknown marker retrieve position, using first-starting", zap.String("position", v), zap.Error(err))
		return area.RetrievePositionFirstStarting
	}
	return pos
}

func (f *feeder) parseMarkers(el *etree.Element) area.Markers {
	marks := make(area.Markers)
	for _, m := range el.SelectElements("marker") {
		class := m.SelectAttrValue("class", "")
		if len(class) == 0 {
			f.log.Warn("Marker without class, ignoring")
			continue
		}
		marks[class] = area.NewBlock("", f.parseAreas(m)...)
	}
	return marks
}

func parseBookmarks(el *etree.Element) []*area.Bookmark {
	var list []*area.Bookmark
	for _, child := range el.SelectElements("bookmark") {
		list = append(list, &area.Bookmark{
			Title:        strings.TrimSpace(child.SelectAttrValue("title", "")),
			Ref:          child.SelectAttrValue("ref", ""),
			ShowChildren: parseBool(child.SelectAttrValue("show-children", "")),
			Children:     parseBookmarks(child),
		})
	}
	return list
}

func (f *feeder) extension(el *etree.Element) *area.Attachment {
	when := area.ExtensionTimingAfterPage
	if v := el.SelectAttrValue("when", ""); len(v) > 0 {
		var err error
		if when, err = area.ParseExtensionTiming(v); err != nil {
			f.log.Warn("Unknown extension timing, processing after page", zap.String("when", v), zap.Error(err))
			when = area.ExtensionTimingAfterPage
		}
	}
	return &area.Attachment{
		Category: el.SelectAttrValue("category", ""),
		Label:    el.SelectAttrValue("name", ""),
		Value:    strings.TrimSpace(el.Text()),
		When:     when,
	}
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(v))
	return b
}
