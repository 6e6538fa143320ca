package render

import (
	"archive/zip"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/amazon-ion/ion-go/ion"
	"go.uber.org/zap"

	"pageflow/area"
)

const (
	ionMimetype = "application/x-pageflow+ion"

	ionPagesDir      = "pages"
	ionExtensionsDir = "extensions"
	ionOutline       = "outline.ion"
	ionManifest      = "manifest.ion"
)

type (
	ionSequence struct {
		Index    int    `ion:"index"`
		Title    string `ion:"title,omitempty"`
		Language string `ion:"lang,omitempty"`
	}

	// ionPageEntry is the manifest view of a page. Entries are listed in
	// document order regardless of the order pages were written in.
	ionPageEntry struct {
		Key      string `ion:"key"`
		Number   int    `ion:"number"`
		Label    string `ion:"label"`
		Sequence int    `ion:"sequence"`
		Entry    string `ion:"entry,omitempty"`
		Status   string `ion:"status"`
	}

	ionPage struct {
		Key      string       `ion:"key"`
		Number   int          `ion:"number"`
		Label    string       `ion:"label"`
		Master   string       `ion:"master,omitempty"`
		Blank    bool         `ion:"blank,omitempty"`
		View     []float64    `ion:"view,omitempty"`
		Sequence int          `ion:"sequence"`
		Regions  []*area.Area `ion:"regions"`
	}

	ionBookmark struct {
		Title        string         `ion:"title"`
		Ref          string         `ion:"ref,omitempty"`
		Target       string         `ion:"target,omitempty"`
		Page         string         `ion:"page,omitempty"`
		Status       string         `ion:"status"`
		ShowChildren bool           `ion:"show_children,omitempty"`
		Children     []*ionBookmark `ion:"children,omitempty"`
	}

	ionDestination struct {
		Ref    string `ion:"ref"`
		Target string `ion:"target,omitempty"`
		Page   string `ion:"page,omitempty"`
		Status string `ion:"status"`
	}

	ionExtension struct {
		Category string `ion:"category,omitempty"`
		Name     string `ion:"name"`
		When     string `ion:"when"`
		Value    string `ion:"value"`
	}

	ionManifestData struct {
		ID           string            `ion:"id"`
		Title        string            `ion:"title,omitempty"`
		Language     string            `ion:"lang"`
		Sequences    []ionSequence     `ion:"sequences"`
		Pages        []*ionPageEntry   `ion:"pages"`
		Destinations []*ionDestination `ion:"destinations,omitempty"`
		Extensions   []string          `ion:"extensions,omitempty"`
		Outline      string            `ion:"outline,omitempty"`
	}
)

// ionRenderer writes zip container with a separate Ion entry per page. Pages
// could be written in any order, their document order is recorded in the
// manifest at the end.
type ionRenderer struct {
	zw   *zip.Writer
	opts Options
	log  *zap.Logger

	started  bool
	manifest ionManifestData
	entries  map[area.Key]*ionPageEntry
}

func newIonRenderer(w io.Writer, opts Options, log *zap.Logger) *ionRenderer {
	return &ionRenderer{
		zw:      zip.NewWriter(w),
		opts:    opts,
		log:     log.Named("ion"),
		entries: make(map[area.Key]*ionPageEntry),
		manifest: ionManifestData{
			ID:       opts.ID,
			Title:    opts.Title,
			Language: opts.Language.String(),
		},
	}
}

func (r *ionRenderer) SupportsOutOfOrder() bool {
	return true
}

func (r *ionRenderer) begin() error {
	if r.started {
		return nil
	}
	r.started = true
	w, err := r.zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, ionMimetype)
	return err
}

func (r *ionRenderer) write(name string, v any) error {
	if err := r.begin(); err != nil {
		return err
	}
	data, err := ion.MarshalBinary(v)
	if err != nil {
		return fmt.Errorf("unable to marshal %s: %w", name, err)
	}
	method := zip.Store
	if r.opts.Compress {
		method = zip.Deflate
	}
	w, err := r.zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	return nil
}

func (r *ionRenderer) StartPageSequence(seq *area.PageSequence) error {
	r.manifest.Sequences = append(r.manifest.Sequences, ionSequence{
		Index:    seq.Index(),
		Title:    seq.Title,
		Language: seq.Language,
	})
	return nil
}

// entry returns manifest entry for the page, allocating it on first use.
func (r *ionRenderer) entry(pv *area.PageViewport) *ionPageEntry {
	if e, ok := r.entries[pv.Key()]; ok {
		return e
	}
	e := &ionPageEntry{
		Key:      string(pv.Key()),
		Number:   pv.PageNumber(),
		Label:    pv.PageNumberString(),
		Sequence: -1,
		Status:   area.PageStatePrepared.String(),
	}
	if seq := pv.Sequence(); seq != nil {
		e.Sequence = seq.Index()
	}
	r.entries[pv.Key()] = e
	r.manifest.Pages = append(r.manifest.Pages, e)
	return e
}

func (r *ionRenderer) PreparePage(pv *area.PageViewport) error {
	r.entry(pv)
	return nil
}

func (r *ionRenderer) RenderPage(pv *area.PageViewport) error {
	e := r.entry(pv)
	if !pv.HasContent() {
		e.Status = area.PageStateFailed.String()
		return fmt.Errorf("no content to render")
	}

	content := pv.Page().Clone()
	content.Walk(func(a *area.Area) {
		switch {
		case a.Kind == area.AreaKindRetrieveMarker:
			a.Children = pv.RetrievedMarker(a)
		case a.Resolvable() && a.Status == area.ResolutionNeverDefined:
			a.Label = r.opts.UnresolvedText
		}
	})
	p := &ionPage{
		Key:      e.Key,
		Number:   e.Number,
		Label:    e.Label,
		Master:   pv.Master(),
		Blank:    pv.Blank(),
		Sequence: e.Sequence,
		Regions:  content.Regions,
	}
	if v := pv.ViewArea(); v.Width > 0 || v.Height > 0 {
		p.View = []float64{v.X, v.Y, v.Width, v.Height}
	}

	name := path.Join(ionPagesDir, url.PathEscape(e.Key)+".ion")
	if err := r.write(name, p); err != nil {
		e.Status = area.PageStateFailed.String()
		return err
	}
	e.Entry, e.Status = name, area.PageStateRendered.String()
	r.log.Debug("Page rendered", zap.Stringer("page", pv), zap.String("entry", name))
	return nil
}

func (r *ionRenderer) ProcessOffDocumentItem(item area.OffDocumentItem) error {
	switch it := item.(type) {
	case *area.BookmarkData:
		var outline []*ionBookmark
		for _, child := range it.Children() {
			outline = append(outline, ionBookmarkFrom(child))
		}
		if err := r.write(ionOutline, outline); err != nil {
			return err
		}
		r.manifest.Outline = ionOutline
	case *area.DestinationData:
		d := &ionDestination{Ref: it.IDRef(), Status: it.Status().String()}
		if pv := it.Page(); pv != nil {
			d.Target, d.Page = string(pv.Key()), pv.PageNumberString()
		}
		r.manifest.Destinations = append(r.manifest.Destinations, d)
	case *area.Attachment:
		name := path.Join(ionExtensionsDir, fmt.Sprintf("%d.ion", len(r.manifest.Extensions)))
		if err := r.write(name, &ionExtension{
			Category: it.Category,
			Name:     it.Label,
			When:     it.When.String(),
			Value:    it.Value,
		}); err != nil {
			return err
		}
		r.manifest.Extensions = append(r.manifest.Extensions, name)
	default:
		return fmt.Errorf("unsupported off-document item %q", item.Name())
	}
	return nil
}

func ionBookmarkFrom(b *area.BookmarkData) *ionBookmark {
	ib := &ionBookmark{
		Title:        b.Label(),
		Ref:          b.IDRef(),
		Status:       b.Status().String(),
		ShowChildren: b.ShowChildren(),
	}
	if pv := b.Page(); pv != nil {
		ib.Target, ib.Page = string(pv.Key()), pv.PageNumberString()
	}
	for _, child := range b.Children() {
		ib.Children = append(ib.Children, ionBookmarkFrom(child))
	}
	return ib
}

func (r *ionRenderer) Finalize() error {
	if err := r.write(ionManifest, &r.manifest); err != nil {
		return err
	}
	if err := r.zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	r.log.Debug("Ion output finalized", zap.Int("pages", len(r.manifest.Pages)), zap.Int("extensions", len(r.manifest.Extensions)))
	return nil
}
