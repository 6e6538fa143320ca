package area

// OffDocumentItem is a unit of output not tied to the visual content of a
// single page. The set of items is closed: *BookmarkData, *DestinationData
// and *Attachment.
type OffDocumentItem interface {
	WhenToProcess() ExtensionTiming
	Name() string

	offDocument()
}

// Attachment carries arbitrary document level extension data from the source
// straight to the renderer.
type Attachment struct {
	Category string
	Label    string
	Value    string
	When     ExtensionTiming
}

func (a *Attachment) WhenToProcess() ExtensionTiming { return a.When }
func (a *Attachment) Name() string                   { return a.Label }
func (*Attachment) offDocument()                     {}

// DestinationData is a named destination pointing to the page where ID is
// defined.
type DestinationData struct {
	idRef  string
	page   *PageViewport
	status Resolution
}

// NewDestinationData creates named destination for id.
func NewDestinationData(id string) *DestinationData {
	return &DestinationData{idRef: id}
}

func (d *DestinationData) WhenToProcess() ExtensionTiming { return ExtensionTimingEndOfDocument }
func (d *DestinationData) Name() string                   { return "Destination" }
func (*DestinationData) offDocument()                     {}

func (d *DestinationData) IDRef() string       { return d.idRef }
func (d *DestinationData) Page() *PageViewport { return d.page }
func (d *DestinationData) Status() Resolution  { return d.status }
func (d *DestinationData) IsResolved() bool    { return d.status != ResolutionPending }

func (d *DestinationData) IDRefs() []string {
	if d.IsResolved() {
		return nil
	}
	return []string{d.idRef}
}

func (d *DestinationData) ResolveIDRef(id string, pages []*PageViewport) {
	if d.IsResolved() || id != d.idRef {
		return
	}
	if len(pages) == 0 {
		d.status = ResolutionNeverDefined
		return
	}
	d.page, d.status = pages[0], ResolutionResolved
}

// resolvableItem returns item as Resolvable when item depends on IDs.
func resolvableItem(item OffDocumentItem) (Resolvable, bool) {
	switch it := item.(type) {
	case *BookmarkData:
		return it, true
	case *DestinationData:
		return it, true
	case *Attachment:
		return nil, false
	default:
		// this should never happen, set is closed
		panic("unknown off-document item")
	}
}
