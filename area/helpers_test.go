package area

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// recorder is a renderer which remembers every call it received.
type recorder struct {
	outOfOrder bool
	calls      []string
	failOn     map[Key]error
	finalErr   error

	// link labels seen on rendered pages, key -> labels in document order
	labels map[Key][]string
}

func newRecorder(outOfOrder bool) *recorder {
	return &recorder{
		outOfOrder: outOfOrder,
		failOn:     make(map[Key]error),
		labels:     make(map[Key][]string),
	}
}

func (r *recorder) SupportsOutOfOrder() bool { return r.outOfOrder }

func (r *recorder) StartPageSequence(seq *PageSequence) error {
	r.calls = append(r.calls, fmt.Sprintf("start:%d", seq.Index()))
	return nil
}

func (r *recorder) PreparePage(pv *PageViewport) error {
	r.calls = append(r.calls, "prepare:"+string(pv.Key()))
	return nil
}

func (r *recorder) RenderPage(pv *PageViewport) error {
	r.calls = append(r.calls, "render:"+string(pv.Key()))
	if !pv.HasContent() {
		return errors.New("page has no content")
	}
	pv.Page().Walk(func(a *Area) {
		if a.Resolvable() {
			r.labels[pv.Key()] = append(r.labels[pv.Key()], a.Label)
		}
	})
	return r.failOn[pv.Key()]
}

func (r *recorder) ProcessOffDocumentItem(item OffDocumentItem) error {
	r.calls = append(r.calls, "item:"+item.Name())
	return nil
}

func (r *recorder) Finalize() error {
	r.calls = append(r.calls, "finalize")
	return r.finalErr
}

// memStore keeps spilled pages in memory.
type memStore struct {
	pages   map[Key]*Page
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{pages: make(map[Key]*Page)}
}

func (s *memStore) Save(key Key, p *Page) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.pages[key] = p.Clone()
	return nil
}

func (s *memStore) Load(key Key) (*Page, error) {
	p, ok := s.pages[key]
	if !ok {
		return nil, fmt.Errorf("page %s not found", key)
	}
	return p, nil
}

func (s *memStore) Remove(key Key) error {
	delete(s.pages, key)
	return nil
}

// counter is a resolvable which counts resolution calls.
type counter struct {
	ids   []string
	calls int
	last  []*PageViewport
	done  bool
}

func (c *counter) IDRefs() []string {
	if c.done {
		return nil
	}
	return c.ids
}

func (c *counter) IsResolved() bool { return c.done }

func (c *counter) ResolveIDRef(id string, pages []*PageViewport) {
	c.calls++
	c.last = pages
	c.done = true
}

// feedPage does what layout does for every finished page: announces IDs,
// registers references and hands the page over.
func feedPage(h *Handler, pv *PageViewport) {
	for _, id := range pv.Page().IDs() {
		h.AddIDDefinition(id, pv)
	}
	h.AddPageReferences(pv)
	h.AddPage(pv)
}

func page(key string, number int, regions ...*Area) *PageViewport {
	return NewPageViewport(Key(key), number, "", &Page{Regions: regions})
}
