package area

// Page is the laid out content of a single page. The scheduler treats it as an
// opaque payload which could be cleared or spilled to a page store at any time.
type Page struct {
	Regions []*Area `ion:"regions"`
}

// Area is a single node of the page content tree. Links and page number
// citations are resolvable: they wait for the page on which the referenced ID
// is defined.
type Area struct {
	Kind     AreaKind   `ion:"kind"`
	ID       string     `ion:"id,omitempty"`
	Text     string     `ion:"text,omitempty"`
	Ref      string     `ion:"ref,omitempty"`
	Target   string     `ion:"target,omitempty"`
	Label    string     `ion:"label,omitempty"`
	Status   Resolution `ion:"status"`
	Children []*Area    `ion:"children,omitempty"`

	// marker retrieval
	Class    string           `ion:"class,omitempty"`
	Position RetrievePosition `ion:"position,omitempty"`
}

// NewBlock creates container area.
func NewBlock(id string, children ...*Area) *Area {
	return &Area{Kind: AreaKindBlock, ID: id, Children: children}
}

// NewText creates text area.
func NewText(text string) *Area {
	return &Area{Kind: AreaKindText, Text: text}
}

// NewLink creates link area pointing to the page where ref is defined.
func NewLink(ref string, children ...*Area) *Area {
	return &Area{Kind: AreaKindLink, Ref: ref, Children: children}
}

// NewCitation creates page number citation area. When last is set citation
// resolves to the last page the ref appears on.
func NewCitation(ref string, last bool) *Area {
	kind := AreaKindCitation
	if last {
		kind = AreaKindCitationLast
	}
	return &Area{Kind: kind, Ref: ref}
}

// NewRetrieveMarker creates placeholder replaced by the page marker of class
// at rendering time.
func NewRetrieveMarker(class string, pos RetrievePosition) *Area {
	return &Area{Kind: AreaKindRetrieveMarker, Class: class, Position: pos}
}

// Resolvable reports if area depends on a reference.
func (a *Area) Resolvable() bool {
	switch a.Kind {
	case AreaKindLink, AreaKindCitation, AreaKindCitationLast:
		return len(a.Ref) > 0
	default:
		return false
	}
}

func (a *Area) IDRefs() []string {
	if !a.Resolvable() || a.Status != ResolutionPending {
		return nil
	}
	return []string{a.Ref}
}

func (a *Area) IsResolved() bool {
	return !a.Resolvable() || a.Status != ResolutionPending
}

// WaitsForAllLocations reports if area resolves to the last page id is
// defined on.
func (a *Area) WaitsForAllLocations(id string) bool {
	return a.Kind == AreaKindCitationLast && a.Ref == id && a.Status == ResolutionPending
}

// ResolveIDRef records target page for the area. Nil or empty pages mean
// reference could not be found anywhere in the document.
func (a *Area) ResolveIDRef(id string, pages []*PageViewport) {
	if !a.Resolvable() || a.Status != ResolutionPending || id != a.Ref {
		return
	}
	if len(pages) == 0 {
		a.Status = ResolutionNeverDefined
		return
	}
	target := pages[0]
	if a.Kind == AreaKindCitationLast {
		target = pages[len(pages)-1]
	}
	a.Target = string(target.Key())
	a.Label = target.PageNumberString()
	a.Status = ResolutionResolved
}

func (a *Area) clone() *Area {
	if a == nil {
		return nil
	}
	c := *a
	if len(a.Children) > 0 {
		c.Children = make([]*Area, 0, len(a.Children))
		for _, ch := range a.Children {
			c.Children = append(c.Children, ch.clone())
		}
	}
	return &c
}

// Walk visits every area of the page in document order.
func (p *Page) Walk(fn func(a *Area)) {
	if p == nil {
		return
	}
	var visit func(list []*Area)
	visit = func(list []*Area) {
		for _, a := range list {
			if a == nil {
				continue
			}
			fn(a)
			visit(a.Children)
		}
	}
	visit(p.Regions)
}

// UnresolvedRefs collects all resolvable areas still waiting for their
// references, grouped by referenced ID.
func (p *Page) UnresolvedRefs() map[string][]Resolvable {
	var refs map[string][]Resolvable
	p.Walk(func(a *Area) {
		if a.IsResolved() {
			return
		}
		if refs == nil {
			refs = make(map[string][]Resolvable)
		}
		refs[a.Ref] = append(refs[a.Ref], a)
	})
	return refs
}

// IDs returns IDs defined by the page content in document order.
func (p *Page) IDs() []string {
	var ids []string
	p.Walk(func(a *Area) {
		if len(a.ID) > 0 {
			ids = append(ids, a.ID)
		}
	})
	return ids
}

// Clone makes a deep copy of the page content.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	c := &Page{Regions: make([]*Area, 0, len(p.Regions))}
	for _, a := range p.Regions {
		c.Regions = append(c.Regions, a.clone())
	}
	return c
}
