// Package area keeps track of laid out pages and cross page references. It
// decides when every page could be handed to the renderer and releases page
// content as soon as possible.
package area

import (
	"fmt"
	"maps"
	"slices"
)

// Key is the stable identity of a page. It survives content disposal and is
// never shared between pages, clones included.
type Key string

// Rect is the page view area in points.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// PageSequence groups pages produced by a single page sequence of the source
// document.
type PageSequence struct {
	Title    string
	Language string

	index int
	pages []*PageViewport
}

// Index returns zero based position of the sequence in the document.
func (s *PageSequence) Index() int {
	return s.index
}

// Pages returns number of pages added to the sequence so far.
func (s *PageSequence) Pages() int {
	return len(s.pages)
}

func (s *PageSequence) isFirstPage(pv *PageViewport) bool {
	return len(s.pages) > 0 && s.pages[0] == pv
}

// PageViewport is the container for a single page. Content could be released
// at any time after rendering, but viewport itself is kept until the end of
// the document since it stays a target for references defined on it.
type PageViewport struct {
	key    Key
	number int
	label  string
	master string
	blank  bool
	view   Rect
	seq    *PageSequence
	state  PageState

	page *Page

	// resolvables from page content waiting for IDs; nil when page is resolved
	unresolved map[string][]Resolvable
	// resolutions which arrived while content was not available
	pendingResolved map[string][]*PageViewport
	// ids some area of the content resolves to the last location of
	lastRefs map[string]bool

	markers markerSlots
}

// NewPageViewport creates a page with given identity and content. Every
// unresolved area of the content is registered as waiting.
func NewPageViewport(key Key, number int, label string, page *Page) *PageViewport {
	if len(label) == 0 {
		label = fmt.Sprintf("%d", number)
	}
	pv := &PageViewport{
		key:    key,
		number: number,
		label:  label,
		page:   page,
		state:  PageStateFormatted,
	}
	pv.registerContentRefs()
	return pv
}

func (pv *PageViewport) Key() Key                 { return pv.key }
func (pv *PageViewport) PageNumber() int          { return pv.number }
func (pv *PageViewport) PageNumberString() string { return pv.label }
func (pv *PageViewport) ViewArea() Rect           { return pv.view }
func (pv *PageViewport) Master() string           { return pv.master }
func (pv *PageViewport) Blank() bool              { return pv.blank }
func (pv *PageViewport) Sequence() *PageSequence  { return pv.seq }
func (pv *PageViewport) State() PageState         { return pv.state }

func (pv *PageViewport) SetViewArea(r Rect)    { pv.view = r }
func (pv *PageViewport) SetMaster(name string) { pv.master = name }
func (pv *PageViewport) SetBlank(blank bool)   { pv.blank = blank }

// Page returns page content, nil after the page was cleared or spilled.
func (pv *PageViewport) Page() *Page {
	return pv.page
}

// HasContent reports if page content is currently available.
func (pv *PageViewport) HasContent() bool {
	return pv.page != nil
}

func (pv *PageViewport) String() string {
	return fmt.Sprintf("page[%s] %q", pv.key, pv.label)
}

// AddUnresolvedIDRef registers resolvable from this page content as waiting
// for id.
func (pv *PageViewport) AddUnresolvedIDRef(id string, r Resolvable) {
	if pv.unresolved == nil {
		pv.unresolved = make(map[string][]Resolvable)
	}
	pv.unresolved[id] = append(pv.unresolved[id], r)
	if waitsForAllLocations(r, id) {
		if pv.lastRefs == nil {
			pv.lastRefs = make(map[string]bool)
		}
		pv.lastRefs[id] = true
	}
}

// registerContentRefs registers every unresolved area of the page content.
func (pv *PageViewport) registerContentRefs() {
	for id, list := range pv.page.UnresolvedRefs() {
		for _, r := range list {
			pv.AddUnresolvedIDRef(id, r)
		}
	}
}

func (pv *PageViewport) IsResolved() bool {
	return len(pv.unresolved) == 0
}

func (pv *PageViewport) IDRefs() []string {
	if len(pv.unresolved) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(pv.unresolved))
}

// WaitsForAllLocations reports if anything on the page still waiting for id
// needs the complete list of its locations. Answer survives content being
// spilled.
func (pv *PageViewport) WaitsForAllLocations(id string) bool {
	_, waiting := pv.unresolved[id]
	return waiting && pv.lastRefs[id]
}

// ResolveIDRef passes resolution to everything on this page waiting for id.
// When content is not available resolution is kept and replayed after
// content is restored.
func (pv *PageViewport) ResolveIDRef(id string, pages []*PageViewport) {
	waiting, ok := pv.unresolved[id]
	if !ok {
		return
	}
	if pv.page == nil {
		if pv.pendingResolved == nil {
			pv.pendingResolved = make(map[string][]*PageViewport)
		}
		pv.pendingResolved[id] = pages
	} else {
		for _, r := range waiting {
			r.ResolveIDRef(id, pages)
		}
	}
	delete(pv.unresolved, id)
	delete(pv.lastRefs, id)
	if len(pv.unresolved) == 0 {
		pv.unresolved = nil
	}
}

// AddMarkers registers markers produced while formatting an area on this
// page. Starting is set for markers collected at the start of an area, isFirst
// is set when area is the first (or for ending markers the only) part of the
// formatting object on this page.
func (pv *PageViewport) AddMarkers(marks Markers, starting, isFirst bool) {
	pv.markers.add(marks, starting, isFirst)
}

// Marker retrieves marker of the given class for a position.
func (pv *PageViewport) Marker(class string, pos RetrievePosition) (*Area, bool) {
	return pv.markers.get(class, pos)
}

// RetrievedMarker returns content of the marker a retrieves from this page.
// Nil means page has no such marker and the retrieval renders empty.
func (pv *PageViewport) RetrievedMarker(a *Area) []*Area {
	if a == nil || a.Kind != AreaKindRetrieveMarker {
		return nil
	}
	m, ok := pv.markers.get(a.Class, a.Position)
	if !ok || m == nil {
		return nil
	}
	return m.clone().Children
}

// Clear drops page content. Identity, markers and reference bookkeeping are
// kept.
func (pv *PageViewport) Clear() {
	pv.page = nil
}

// detach takes content away from the page. Waiting IDs are kept, so the page
// does not become resolved by accident.
func (pv *PageViewport) detach() *Page {
	p := pv.page
	pv.page = nil
	for id := range pv.unresolved {
		pv.unresolved[id] = nil
	}
	return p
}

// restore puts content back, rebuilds waiting list from it and replays
// resolutions received while content was away.
func (pv *PageViewport) restore(p *Page) {
	pv.page = p
	pv.unresolved, pv.lastRefs = nil, nil
	pv.registerContentRefs()
	pending := pv.pendingResolved
	pv.pendingResolved = nil
	for _, id := range slices.Sorted(maps.Keys(pending)) {
		pv.ResolveIDRef(id, pending[id])
	}
}

// Clone makes independent copy of the page under a new key. Content is deep
// copied and reference bookkeeping is derived from the copy.
func (pv *PageViewport) Clone(key Key) *PageViewport {
	c := &PageViewport{
		key:     key,
		number:  pv.number,
		label:   pv.label,
		master:  pv.master,
		blank:   pv.blank,
		view:    pv.view,
		state:   PageStateFormatted,
		markers: pv.markers.clone(),
	}
	if pv.page != nil {
		c.page = pv.page.Clone()
		c.registerContentRefs()
	}
	return c
}
