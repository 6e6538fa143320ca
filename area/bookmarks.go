package area

import (
	"maps"
	"slices"
)

// Bookmark is a declared outline entry as it comes from the source document.
type Bookmark struct {
	Title        string
	Ref          string
	ShowChildren bool
	Children     []*Bookmark
}

// Outline is the declared bookmark tree of the document.
type Outline struct {
	Bookmarks []*Bookmark
}

// BookmarkData is resolvable node of the bookmark tree. Every node keeps
// aggregated view of IDs it or any of its descendants still wait on, so
// resolution could enter at the root and cascade down to the branches which
// registered the ID.
type BookmarkData struct {
	idRef        string
	label        string
	showChildren bool

	parent   *BookmarkData
	children []*BookmarkData

	page   *PageViewport
	status Resolution

	// id -> nodes waiting for it: node itself and/or its direct children
	unresolved map[string][]*BookmarkData
}

// NewBookmarkRoot creates root of the bookmark tree. Root does not point
// anywhere by itself.
func NewBookmarkRoot() *BookmarkData {
	return &BookmarkData{
		status:       ResolutionResolved,
		showChildren: true,
		unresolved:   make(map[string][]*BookmarkData),
	}
}

// NewBookmarkData creates bookmark node waiting for id. Empty id creates node
// which is resolved for itself.
func NewBookmarkData(id, label string, showChildren bool) *BookmarkData {
	b := &BookmarkData{
		idRef:        id,
		label:        label,
		showChildren: showChildren,
		unresolved:   make(map[string][]*BookmarkData),
	}
	if len(id) == 0 {
		b.status = ResolutionResolved
		return b
	}
	b.unresolved[id] = []*BookmarkData{b}
	return b
}

// NewBookmarkTree builds resolvable bookmark tree from declared outline.
func NewBookmarkTree(o *Outline) *BookmarkData {
	root := NewBookmarkRoot()
	if o == nil {
		return root
	}
	var build func(bm *Bookmark) *BookmarkData
	build = func(bm *Bookmark) *BookmarkData {
		node := NewBookmarkData(bm.Ref, bm.Title, bm.ShowChildren)
		for _, child := range bm.Children {
			node.AddChild(build(child))
		}
		return node
	}
	for _, bm := range o.Bookmarks {
		root.AddChild(build(bm))
	}
	return root
}

func (b *BookmarkData) WhenToProcess() ExtensionTiming { return ExtensionTimingEndOfDocument }
func (b *BookmarkData) Name() string                   { return "Bookmarks" }
func (*BookmarkData) offDocument()                     {}

func (b *BookmarkData) IDRef() string             { return b.idRef }
func (b *BookmarkData) Label() string             { return b.label }
func (b *BookmarkData) ShowChildren() bool        { return b.showChildren }
func (b *BookmarkData) Children() []*BookmarkData { return b.children }
func (b *BookmarkData) Parent() *BookmarkData     { return b.parent }
func (b *BookmarkData) Status() Resolution        { return b.status }

// Page returns target page, nil when bookmark is not resolved or its target
// was never defined.
func (b *BookmarkData) Page() *PageViewport { return b.page }

// AddChild attaches child node, merging everything child subtree waits for
// into this node.
func (b *BookmarkData) AddChild(child *BookmarkData) {
	child.parent = b
	b.children = append(b.children, child)
	for id := range child.unresolved {
		b.unresolved[id] = append(b.unresolved[id], child)
	}
}

// IsResolved reports if node and all its descendants are resolved.
func (b *BookmarkData) IsResolved() bool {
	return len(b.unresolved) == 0
}

func (b *BookmarkData) IDRefs() []string {
	if len(b.unresolved) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(b.unresolved))
}

// ResolveIDRef resolves id for this node and every branch below it which
// registered the id. Calls for ids not waited on are ignored.
func (b *BookmarkData) ResolveIDRef(id string, pages []*PageViewport) {
	if !b.resolve(id, pages) {
		return
	}
	if b.parent != nil {
		b.parent.childSettled(b, id)
	}
}

func (b *BookmarkData) resolve(id string, pages []*PageViewport) bool {
	owners, ok := b.unresolved[id]
	if !ok {
		return false
	}
	delete(b.unresolved, id)
	for _, owner := range owners {
		if owner == b {
			b.settle(pages)
			continue
		}
		owner.resolve(id, pages)
	}
	return true
}

func (b *BookmarkData) settle(pages []*PageViewport) {
	if len(pages) == 0 {
		b.status = ResolutionNeverDefined
		return
	}
	b.page, b.status = pages[0], ResolutionResolved
}

// childSettled is called when child got id resolved without going through
// this node. Propagates upwards once nothing below waits for the id.
func (b *BookmarkData) childSettled(child *BookmarkData, id string) {
	owners, ok := b.unresolved[id]
	if !ok {
		return
	}
	owners = slices.DeleteFunc(owners, func(o *BookmarkData) bool { return o == child })
	if len(owners) > 0 {
		b.unresolved[id] = owners
		return
	}
	delete(b.unresolved, id)
	if b.parent != nil {
		b.parent.childSettled(b, id)
	}
}
