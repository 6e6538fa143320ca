package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"pageflow/area"
)

const xmlRoot = "pageflow"

// xmlRenderer streams document as XML. Output is written element by element
// so only a single page is ever kept in memory, which requires strict page
// order.
type xmlRenderer struct {
	w    io.Writer
	opts Options
	log  *zap.Logger

	started bool
	items   int
}

func newXMLRenderer(w io.Writer, opts Options, log *zap.Logger) *xmlRenderer {
	return &xmlRenderer{w: w, opts: opts, log: log.Named("xml")}
}

func (r *xmlRenderer) SupportsOutOfOrder() bool {
	return false
}

// begin writes XML declaration and opening root tag with document metadata.
func (r *xmlRenderer) begin() error {
	if r.started {
		return nil
	}
	r.started = true

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(xmlRoot)
	root.CreateAttr("id", r.opts.ID)
	if len(r.opts.Title) > 0 {
		root.CreateAttr("title", r.opts.Title)
	}
	root.CreateAttr("lang", r.opts.Language.String())

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	// root element stays open until Finalize
	head := strings.TrimSuffix(buf.String(), "/>") + ">"
	_, err := io.WriteString(r.w, head)
	return err
}

// emit writes single top level element. Element is indented nested under an
// empty root, etree only touches whitespace between elements.
func (r *xmlRenderer) emit(el *etree.Element) error {
	if err := r.begin(); err != nil {
		return err
	}
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	doc.CreateElement(xmlRoot).AddChild(el)
	if r.opts.Indent > 0 {
		doc.Indent(r.opts.Indent)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	out := strings.TrimPrefix(buf.String(), "<"+xmlRoot+">")
	out = strings.TrimSuffix(strings.TrimRight(out, "\n"), "</"+xmlRoot+">")
	_, err := io.WriteString(r.w, strings.TrimRight(out, "\n"))
	return err
}

func (r *xmlRenderer) StartPageSequence(seq *area.PageSequence) error {
	el := etree.NewElement("pageSequence")
	el.CreateAttr("index", strconv.Itoa(seq.Index()))
	if len(seq.Title) > 0 {
		el.CreateAttr("title", seq.Title)
	}
	if len(seq.Language) > 0 {
		el.CreateAttr("lang", seq.Language)
	}
	return r.emit(el)
}

func (r *xmlRenderer) PreparePage(pv *area.PageViewport) error {
	return fmt.Errorf("xml output does not support out of order pages: %s", pv)
}

func (r *xmlRenderer) RenderPage(pv *area.PageViewport) error {
	if !pv.HasContent() {
		return fmt.Errorf("no content to render")
	}

	el := etree.NewElement("page")
	el.CreateAttr("key", string(pv.Key()))
	el.CreateAttr("number", strconv.Itoa(pv.PageNumber()))
	el.CreateAttr("label", pv.PageNumberString())
	if seq := pv.Sequence(); seq != nil {
		el.CreateAttr("sequence", strconv.Itoa(seq.Index()))
	}
	if len(pv.Master()) > 0 {
		el.CreateAttr("master", pv.Master())
	}
	if pv.Blank() {
		el.CreateAttr("blank", "true")
	}
	if v := pv.ViewArea(); v.Width > 0 || v.Height > 0 {
		el.CreateAttr("view", fmt.Sprintf("%g %g %g %g", v.X, v.Y, v.Width, v.Height))
	}
	for _, a := range pv.Page().Regions {
		r.appendArea(el, pv, a)
	}
	r.log.Debug("Page rendered", zap.Stringer("page", pv))
	return r.emit(el)
}

func (r *xmlRenderer) appendArea(parent *etree.Element, pv *area.PageViewport, a *area.Area) {
	if a == nil {
		return
	}
	switch a.Kind {
	case area.AreaKindText:
		parent.CreateText(a.Text)
		return
	case area.AreaKindBlock:
		el := parent.CreateElement("block")
		if len(a.ID) > 0 {
			el.CreateAttr("id", a.ID)
		}
		for _, ch := range a.Children {
			r.appendArea(el, pv, ch)
		}
	case area.AreaKindLink:
		el := parent.CreateElement("link")
		r.refAttrs(el, a)
		for _, ch := range a.Children {
			r.appendArea(el, pv, ch)
		}
	case area.AreaKindCitation, area.AreaKindCitationLast:
		el := parent.CreateElement("citation")
		r.refAttrs(el, a)
		if a.Kind == area.AreaKindCitationLast {
			el.CreateAttr("last", "true")
		}
		el.SetText(label(a, r.opts.UnresolvedText))
	case area.AreaKindRetrieveMarker:
		el := parent.CreateElement("retrieveMarker")
		el.CreateAttr("class", a.Class)
		el.CreateAttr("position", a.Position.String())
		for _, ch := range pv.RetrievedMarker(a) {
			r.appendArea(el, pv, ch)
		}
	}
}

func (r *xmlRenderer) refAttrs(el *etree.Element, a *area.Area) {
	if len(a.ID) > 0 {
		el.CreateAttr("id", a.ID)
	}
	el.CreateAttr("ref", a.Ref)
	switch a.Status {
	case area.ResolutionResolved:
		el.CreateAttr("target", a.Target)
		el.CreateAttr("page", a.Label)
	case area.ResolutionNeverDefined:
		el.CreateAttr("page", r.opts.UnresolvedText)
		el.CreateAttr("status", a.Status.String())
	default:
		el.CreateAttr("status", a.Status.String())
	}
}

func (r *xmlRenderer) ProcessOffDocumentItem(item area.OffDocumentItem) error {
	r.items++
	switch it := item.(type) {
	case *area.BookmarkData:
		el := etree.NewElement("bookmarks")
		for _, child := range it.Children() {
			r.appendBookmark(el, child)
		}
		return r.emit(el)
	case *area.DestinationData:
		el := etree.NewElement("destination")
		el.CreateAttr("ref", it.IDRef())
		if pv := it.Page(); pv != nil {
			el.CreateAttr("target", string(pv.Key()))
			el.CreateAttr("page", pv.PageNumberString())
		} else {
			el.CreateAttr("status", it.Status().String())
		}
		return r.emit(el)
	case *area.Attachment:
		el := etree.NewElement("extension")
		if len(it.Category) > 0 {
			el.CreateAttr("category", it.Category)
		}
		el.CreateAttr("name", it.Label)
		el.CreateAttr("when", it.When.String())
		el.SetText(it.Value)
		return r.emit(el)
	default:
		return fmt.Errorf("unsupported off-document item %q", item.Name())
	}
}

func (r *xmlRenderer) appendBookmark(parent *etree.Element, b *area.BookmarkData) {
	el := parent.CreateElement("bookmark")
	el.CreateAttr("title", b.Label())
	if len(b.IDRef()) > 0 {
		el.CreateAttr("ref", b.IDRef())
	}
	if pv := b.Page(); pv != nil {
		el.CreateAttr("target", string(pv.Key()))
		el.CreateAttr("page", pv.PageNumberString())
	} else if len(b.IDRef()) > 0 {
		el.CreateAttr("status", b.Status().String())
	}
	if b.ShowChildren() {
		el.CreateAttr("show-children", "true")
	}
	for _, child := range b.Children() {
		r.appendBookmark(el, child)
	}
}

func (r *xmlRenderer) Finalize() error {
	if err := r.begin(); err != nil {
		return err
	}
	closing := "</" + xmlRoot + ">\n"
	if r.opts.Indent > 0 {
		closing = "\n" + closing
	}
	if _, err := io.WriteString(r.w, closing); err != nil {
		return err
	}
	r.log.Debug("XML output finalized", zap.Int("items", r.items))
	return nil
}
