package area

import (
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result summarizes document processing.
type Result struct {
	Sequences int
	Pages     int
	Rendered  int
	Dangling  []string
	Failures  []*Failure
	Elapsed   time.Duration
}

// Err combines all non fatal failures into a single error, nil if there were
// none.
func (r *Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Handler receives events from the layout pass, keeps the document registry
// of IDs and feeds pages and off-document items to the Model.
type Handler struct {
	log      *zap.Logger
	registry *Registry
	model    *Model

	seq       *PageSequence
	sequences int
	pages     int

	outline      *Outline
	destinations []string

	start  time.Time
	result *Result
}

// NewHandler creates handler rendering document with r.
func NewHandler(r Renderer, log *zap.Logger, opts ...ModelOption) *Handler {
	return &Handler{
		log:      log.Named("handler"),
		registry: NewRegistry(log),
		model:    NewModel(r, log, opts...),
		start:    time.Now(),
	}
}

// Registry gives access to document ID registry.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// Model gives access to page scheduler.
func (h *Handler) Model() *Model {
	return h.model
}

// StartPageSequence begins new page sequence, closing previous one if
// necessary.
func (h *Handler) StartPageSequence(seq *PageSequence) {
	if h.seq != nil {
		h.EndPageSequence()
	}
	seq.index = h.sequences
	h.sequences++
	h.seq = seq
	h.log.Debug("Page sequence started", zap.Int("index", seq.index), zap.String("title", seq.Title))
	h.model.StartPageSequence(seq)
}

// EndPageSequence closes current page sequence. References waiting for the
// last location of already defined IDs are resolved here.
func (h *Handler) EndPageSequence() {
	if h.seq == nil {
		return
	}
	completed := h.registry.Complete()
	h.log.Debug("Page sequence ended", zap.Int("index", h.seq.index), zap.Int("pages", len(h.seq.pages)), zap.Int("completed", completed))
	h.model.EndPageSequence(h.seq)
	h.seq = nil
}

// AddPage hands completed page to the scheduler.
func (h *Handler) AddPage(pv *PageViewport) {
	if h.seq == nil {
		h.log.Warn("Page outside of page sequence, starting anonymous sequence", zap.Stringer("page", pv))
		h.StartPageSequence(&PageSequence{})
	}
	pv.seq = h.seq
	h.seq.pages = append(h.seq.pages, pv)
	h.pages++
	h.model.AddPage(pv)
}

// AddIDDefinition records that id is defined on page, everything waiting for
// it is resolved.
func (h *Handler) AddIDDefinition(id string, pv *PageViewport) {
	h.registry.Define(id, pv)
}

// AddUnresolved resolves res right away if id is already known, otherwise
// registers it as waiting for id. Resolvables which need every location of id
// always wait, more definitions could still follow.
func (h *Handler) AddUnresolved(id string, res Resolvable) {
	if pages := h.registry.Locations(id); len(pages) > 0 && !waitsForAllLocations(res, id) {
		res.ResolveIDRef(id, pages)
		return
	}
	h.registry.AddUnresolved(id, res)
}

// AddPageReferences registers page as waiting for everything its content
// references.
func (h *Handler) AddPageReferences(pv *PageViewport) {
	for _, id := range pv.IDRefs() {
		h.AddUnresolved(id, pv)
	}
}

// SetOutline sets declared bookmark tree, it is resolved and handed to the
// renderer at the end of the document.
func (h *Handler) SetOutline(o *Outline) {
	h.outline = o
}

// AddDestination requests named destination for id.
func (h *Handler) AddDestination(id string) {
	h.destinations = append(h.destinations, id)
}

// AddOffDocumentItem resolves what could be resolved in item, registers the
// rest and passes item to the scheduler.
func (h *Handler) AddOffDocumentItem(item OffDocumentItem) {
	if res, ok := resolvableItem(item); ok {
		for _, id := range res.IDRefs() {
			if pages := h.registry.Locations(id); len(pages) > 0 {
				res.ResolveIDRef(id, pages)
				continue
			}
			h.log.Warn("Unresolved reference in off-document item", zap.String("item", item.Name()), zap.String("id", id))
			h.registry.AddUnresolved(id, res)
		}
	}
	h.model.HandleOffDocumentItem(item)
}

// EndDocument finishes processing: builds bookmarks and destinations, forces
// resolution of IDs which were never defined, renders everything left and
// finalizes renderer. Returned error is fatal, non fatal problems are
// reported in Result. Subsequent calls return the same result.
func (h *Handler) EndDocument() (*Result, error) {
	if h.result != nil {
		return h.result, nil
	}
	h.EndPageSequence()

	if h.outline != nil {
		h.AddOffDocumentItem(NewBookmarkTree(h.outline))
	}
	for _, id := range h.destinations {
		h.AddOffDocumentItem(NewDestinationData(id))
	}

	dangling := h.registry.Finalize()
	err := h.model.EndDocument()

	h.result = &Result{
		Sequences: h.sequences,
		Pages:     h.pages,
		Rendered:  h.model.Rendered(),
		Dangling:  dangling,
		Failures:  h.model.Failures(),
		Elapsed:   time.Since(h.start),
	}
	h.log.Debug("Document finished",
		zap.Int("sequences", h.result.Sequences),
		zap.Int("pages", h.result.Pages),
		zap.Int("rendered", h.result.Rendered),
		zap.Int("dangling", len(h.result.Dangling)),
		zap.Int("failures", len(h.result.Failures)),
		zap.Duration("elapsed", h.result.Elapsed))
	return h.result, err
}
