package area

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Renderer is the output backend driven by the Model. Model only decides when
// and in which order renderer is called.
type Renderer interface {
	// SupportsOutOfOrder reports if pages could be finalized in any order.
	SupportsOutOfOrder() bool
	// StartPageSequence announces the sequence subsequent pages belong to.
	StartPageSequence(seq *PageSequence) error
	// PreparePage lets renderer allocate page ahead of its content, only
	// called for renderers supporting out of order output.
	PreparePage(pv *PageViewport) error
	RenderPage(pv *PageViewport) error
	ProcessOffDocumentItem(item OffDocumentItem) error
	// Finalize completes the output, no calls are made after that.
	Finalize() error
}

// PageStore keeps page content while page waits in the queue.
type PageStore interface {
	Save(key Key, p *Page) error
	Load(key Key) (*Page, error)
	Remove(key Key) error
}

// Failure describes a non fatal problem with a single page or off-document
// item. Processing continues after failure.
type Failure struct {
	Page *PageViewport
	Item OffDocumentItem
	Err  error
}

func (f *Failure) Error() string {
	switch {
	case f.Page != nil:
		return fmt.Sprintf("%s: %v", f.Page, f.Err)
	case f.Item != nil:
		return fmt.Sprintf("off-document item %q: %v", f.Item.Name(), f.Err)
	default:
		return f.Err.Error()
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ModelOption configures Model.
type ModelOption func(*Model)

// WithPageStore makes model spill content of pages waiting in the queue into
// the store and load it back right before rendering.
func WithPageStore(store PageStore) ModelOption {
	return func(m *Model) {
		m.store = store
	}
}

// Model schedules pages for rendering. Resolved pages are rendered as soon as
// renderer allows it, the rest is kept in the queue until resolution of
// some ID unblocks them. For renderers which require strict page order the
// first unresolved page in the queue blocks everything after it.
type Model struct {
	renderer Renderer
	store    PageStore
	log      *zap.Logger

	current *PageSequence
	started *PageSequence
	// sequences without pages waiting for queued pages before them
	deferred []deferredSequence

	queue     []*PageViewport
	afterPage []OffDocumentItem
	endOfDoc  []OffDocumentItem

	spilled  map[Key]bool
	failures []*Failure
	rendered int
	ended    bool
}

type deferredSequence struct {
	after *PageViewport
	seq   *PageSequence
}

// NewModel creates scheduler for renderer.
func NewModel(r Renderer, log *zap.Logger, opts ...ModelOption) *Model {
	m := &Model{
		renderer: r,
		log:      log.Named("model"),
		spilled:  make(map[Key]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartPageSequence makes seq current. Renderers supporting out of order
// output are told about it right away, others right before the first page of
// the sequence is rendered.
func (m *Model) StartPageSequence(seq *PageSequence) {
	m.current = seq
	if m.renderer.SupportsOutOfOrder() {
		m.startSequence(seq)
	}
}

func (m *Model) startSequence(seq *PageSequence) {
	if seq == nil || seq == m.started {
		return
	}
	m.started = seq
	if err := m.renderer.StartPageSequence(seq); err != nil {
		m.fail(&Failure{Err: fmt.Errorf("unable to start page sequence %q: %w", seq.Title, err)})
	}
}

// EndPageSequence renders pages unblocked by resolutions made at the end of
// seq. Strict renderers learn about a sequence without pages here, once every
// page queued before it is rendered.
func (m *Model) EndPageSequence(seq *PageSequence) {
	if m.ended {
		return
	}
	if m.drain(nil, false) {
		m.flush(&m.afterPage)
	}
	if seq == nil || seq.Pages() > 0 || m.renderer.SupportsOutOfOrder() {
		return
	}
	if len(m.queue) == 0 {
		m.startSequence(seq)
		return
	}
	m.deferred = append(m.deferred, deferredSequence{after: m.queue[len(m.queue)-1], seq: seq})
}

// startDeferred announces empty sequences which followed pv.
func (m *Model) startDeferred(pv *PageViewport) {
	for len(m.deferred) > 0 && m.deferred[0].after == pv {
		m.startSequence(m.deferred[0].seq)
		m.deferred = m.deferred[1:]
	}
}

// AddPage accepts newly formatted page. Page is either rendered immediately
// or queued until it (and for strict renderers everything before it) is
// resolved.
func (m *Model) AddPage(pv *PageViewport) {
	if m.ended {
		m.log.Warn("Page added after end of document, ignoring", zap.Stringer("page", pv))
		return
	}
	if pv.seq == nil {
		pv.seq = m.current
	}

	if m.renderer.SupportsOutOfOrder() && pv.IsResolved() {
		m.render(pv)
	} else {
		m.prepare(pv)
	}

	if m.drain(pv, false) {
		m.flush(&m.afterPage)
	}
}

func (m *Model) prepare(pv *PageViewport) {
	pv.state = PageStateQueued
	if m.renderer.SupportsOutOfOrder() {
		if err := m.renderer.PreparePage(pv); err != nil {
			m.fail(&Failure{Page: pv, Err: fmt.Errorf("unable to prepare page: %w", err)})
		} else {
			pv.state = PageStatePrepared
		}
	}
	m.queue = append(m.queue, pv)
	m.log.Debug("Page queued", zap.Stringer("page", pv), zap.Strings("waiting", pv.IDRefs()), zap.Int("queue", len(m.queue)))
}

// drain renders every page from the queue which could be rendered now and
// reports if it is safe to flush after-page items. Trigger is the page which
// caused the check, it is spilled to the page store when it stays queued.
func (m *Model) drain(trigger *PageViewport, renderUnresolved bool) bool {
	outOfOrder := m.renderer.SupportsOutOfOrder()

	kept := m.queue[:0]
	blocked := false
	for _, pv := range m.queue {
		if blocked {
			kept = append(kept, pv)
			continue
		}
		if pv.IsResolved() || renderUnresolved {
			m.render(pv)
			continue
		}
		kept = append(kept, pv)
		if !outOfOrder {
			blocked = true
		}
	}
	clear(m.queue[len(kept):])
	m.queue = kept

	if m.store != nil && trigger != nil && trigger.HasContent() && slices.Contains(m.queue, trigger) {
		m.spill(trigger)
	}
	return outOfOrder || len(m.queue) == 0
}

func (m *Model) render(pv *PageViewport) {
	defer m.startDeferred(pv)
	if !pv.HasContent() && m.spilled[pv.key] {
		if err := m.reload(pv); err != nil {
			pv.state = PageStateFailed
			m.fail(&Failure{Page: pv, Err: fmt.Errorf("unable to load page from cache: %w", err)})
			return
		}
	}
	if !m.renderer.SupportsOutOfOrder() {
		m.startSequence(pv.seq)
	}
	if !pv.IsResolved() {
		for _, id := range pv.IDRefs() {
			m.log.Warn("Rendering page with unresolved reference", zap.Stringer("page", pv), zap.String("id", id))
		}
	}

	if err := m.renderer.RenderPage(pv); err != nil {
		pv.state = PageStateFailed
		m.fail(&Failure{Page: pv, Err: err})
	} else {
		pv.state = PageStateRendered
		m.rendered++
	}
	pv.Clear()
}

func (m *Model) spill(pv *PageViewport) {
	p := pv.detach()
	if err := m.store.Save(pv.key, p); err != nil {
		m.log.Warn("Unable to cache page, keeping it in memory", zap.Stringer("page", pv), zap.Error(err))
		pv.restore(p)
		return
	}
	m.spilled[pv.key] = true
	m.log.Debug("Page cached", zap.Stringer("page", pv))
}

func (m *Model) reload(pv *PageViewport) error {
	p, err := m.store.Load(pv.key)
	if err != nil {
		return err
	}
	delete(m.spilled, pv.key)
	pv.restore(p)
	if err := m.store.Remove(pv.key); err != nil {
		m.log.Debug("Unable to remove page from cache", zap.Stringer("page", pv), zap.Error(err))
	}
	return nil
}

// HandleOffDocumentItem forwards item to renderer now or buffers it according
// to item timing.
func (m *Model) HandleOffDocumentItem(item OffDocumentItem) {
	switch item.WhenToProcess() {
	case ExtensionTimingImmediately:
		m.process(item)
	case ExtensionTimingAfterPage:
		m.afterPage = append(m.afterPage, item)
	case ExtensionTimingEndOfDocument:
		m.endOfDoc = append(m.endOfDoc, item)
	default:
		m.log.Warn("Unknown off-document item timing, processing at the end", zap.String("item", item.Name()), zap.Stringer("when", item.WhenToProcess()))
		m.endOfDoc = append(m.endOfDoc, item)
	}
}

func (m *Model) flush(items *[]OffDocumentItem) {
	list := *items
	*items = nil
	for _, item := range list {
		m.process(item)
	}
}

func (m *Model) process(item OffDocumentItem) {
	if err := m.renderer.ProcessOffDocumentItem(item); err != nil {
		m.fail(&Failure{Item: item, Err: err})
	}
}

func (m *Model) fail(f *Failure) {
	m.log.Error("Rendering problem", zap.Error(f))
	m.failures = append(m.failures, f)
}

// EndDocument renders everything still queued, flushes buffered off-document
// items and finalizes renderer. Only renderer finalization error is
// returned, other problems are available from Failures. Subsequent calls do
// nothing.
func (m *Model) EndDocument() error {
	if m.ended {
		return nil
	}
	m.ended = true

	m.drain(nil, true)
	m.flush(&m.afterPage)
	m.flush(&m.endOfDoc)

	if err := m.renderer.Finalize(); err != nil {
		return fmt.Errorf("unable to finalize renderer: %w", err)
	}
	return nil
}

// Failures returns problems encountered so far.
func (m *Model) Failures() []*Failure {
	return m.failures
}

// Rendered returns number of successfully rendered pages.
func (m *Model) Rendered() int {
	return m.rendered
}

// Queued returns number of pages waiting to be rendered.
func (m *Model) Queued() int {
	return len(m.queue)
}

// Cached returns number of pages which content is currently in page store.
func (m *Model) Cached() int {
	return len(m.spilled)
}
