package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"pageflow/area"
	"pageflow/common"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func testOptions(indent int) Options {
	return Options{
		Indent:         indent,
		UnresolvedText: "?",
		Compress:       true,
		ID:             "doc-1",
		Title:          "T",
		Language:       language.English,
	}
}

func feedPage(h *area.Handler, pv *area.PageViewport) {
	for _, id := range pv.Page().IDs() {
		h.AddIDDefinition(id, pv)
	}
	h.AddPageReferences(pv)
	h.AddPage(pv)
}

func page(key string, number int, regions ...*area.Area) *area.PageViewport {
	return area.NewPageViewport(area.Key(key), number, "", &area.Page{Regions: regions})
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range []common.OutputFmt{common.OutputFmtXml, common.OutputFmtIon} {
		r, err := New(f, &buf, testOptions(0), testLogger(t))
		if err != nil {
			t.Fatalf("New(%s) error = %v", f, err)
		}
		if r.SupportsOutOfOrder() != (f == common.OutputFmtIon) {
			t.Errorf("%s: unexpected out of order support", f)
		}
	}
	if _, err := New(common.OutputFmt(42), &buf, testOptions(0), testLogger(t)); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestXMLOutput(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtXml, &buf, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{Title: "main"})
	feedPage(h, page("p1", 1, area.NewBlock("a",
		area.NewText("Go "),
		area.NewLink("b", area.NewText("there")),
		area.NewCitation("missing", false),
	)))
	feedPage(h, page("p2", 2, area.NewBlock("b")))

	if buf.Len() != 0 {
		t.Fatalf("blocked page must not be written, got %q", buf.String())
	}
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?><pageflow id="doc-1" title="T" lang="en">` +
		`<pageSequence index="0" title="main"/>` +
		`<page key="p1" number="1" label="1" sequence="0"><block id="a">Go <link ref="b" target="p2" page="2">there</link>` +
		`<citation ref="missing" page="?" status="never-defined">?</citation></block></page>` +
		`<page key="p2" number="2" label="2" sequence="0"><block id="b"/></page>` +
		"</pageflow>\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestXMLOffDocument(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtXml, &buf, testOptions(2), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{Language: "en"})
	h.AddOffDocumentItem(&area.Attachment{Category: "info", Label: "meta", Value: "a&b", When: area.ExtensionTimingImmediately})
	feedPage(h, page("p1", 1, area.NewBlock("ch1", area.NewText("One"))))
	feedPage(h, page("p2", 2, area.NewBlock("ch2", area.NewText("Two"))))
	h.SetOutline(&area.Outline{Bookmarks: []*area.Bookmark{
		{Title: "Chapter 1", Ref: "ch1", ShowChildren: true, Children: []*area.Bookmark{
			{Title: "Chapter 2", Ref: "ch2"},
		}},
		{Title: "Lost", Ref: "nowhere"},
	}})
	h.AddDestination("ch2")
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(buf.String()); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, buf.String())
	}
	root := doc.Root()
	var tags []string
	for _, el := range root.ChildElements() {
		tags = append(tags, el.Tag)
	}
	if diff := cmp.Diff([]string{"extension", "pageSequence", "page", "page", "bookmarks", "destination"}, tags); diff != "" {
		t.Errorf("top level elements mismatch (-want +got):\n%s", diff)
	}
	if ext := root.SelectElement("extension"); ext.Text() != "a&b" || ext.SelectAttrValue("when", "") != "immediately" {
		t.Errorf("unexpected extension %q", ext.Text())
	}
	if seq := root.SelectElement("pageSequence"); seq.SelectAttrValue("lang", "") != "en" {
		t.Error("sequence language lost")
	}

	nested := root.FindElement("./bookmarks/bookmark/bookmark")
	if nested == nil || nested.SelectAttrValue("target", "") != "p2" || nested.SelectAttrValue("page", "") != "2" {
		t.Errorf("nested bookmark not resolved:\n%s", buf.String())
	}
	lost := root.FindElement("./bookmarks/bookmark[@title='Lost']")
	if lost == nil || lost.SelectAttrValue("status", "") != "never-defined" {
		t.Errorf("dangling bookmark not marked:\n%s", buf.String())
	}
	if dest := root.SelectElement("destination"); dest.SelectAttrValue("target", "") != "p2" {
		t.Errorf("destination not resolved:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n  <page key=\"p1\"") {
		t.Errorf("output is not indented:\n%s", buf.String())
	}
}

func TestXMLIndentKeepsText(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtXml, &buf, testOptions(2), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.AddOffDocumentItem(&area.Attachment{Label: "note", Value: "line1\nline2", When: area.ExtensionTimingImmediately})
	h.StartPageSequence(&area.PageSequence{})
	feedPage(h, page("p1", 1, area.NewBlock("a", area.NewText("first\nsecond"))))
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(buf.String()); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, buf.String())
	}
	if got := doc.Root().SelectElement("extension").Text(); got != "line1\nline2" {
		t.Errorf("extension text = %q", got)
	}
	if got := doc.Root().FindElement("./page/block").Text(); got != "first\nsecond" {
		t.Errorf("block text = %q", got)
	}
	if !strings.Contains(buf.String(), "\n  <extension name=\"note\" when=\"immediately\">line1\nline2</extension>") {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n    <block id=\"a\">first\nsecond</block>\n  </page>") {
		t.Errorf("page content is not indented under root:\n%s", buf.String())
	}
}

func TestXMLEmptySequence(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtXml, &buf, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{Title: "main"})
	feedPage(h, page("p1", 1, area.NewLink("x")))
	h.StartPageSequence(&area.PageSequence{Title: "blank"})
	h.StartPageSequence(&area.PageSequence{Title: "back"})
	feedPage(h, page("p2", 2, area.NewBlock("x")))
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(buf.String()); err != nil {
		t.Fatalf("output is not valid XML: %v\n%s", err, buf.String())
	}
	var got []string
	for _, el := range doc.Root().ChildElements() {
		got = append(got, el.Tag+":"+el.SelectAttrValue("title", el.SelectAttrValue("key", "")))
	}
	want := []string{"pageSequence:main", "page:p1", "pageSequence:blank", "pageSequence:back", "page:p2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("top level elements mismatch (-want +got):\n%s", diff)
	}
}

func TestXMLRetrieveMarker(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtXml, &buf, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{})

	pv := page("p1", 1,
		area.NewRetrieveMarker("chapter", area.RetrievePositionFirstStarting),
		area.NewRetrieveMarker("section", area.RetrievePositionLastEnding),
	)
	pv.AddMarkers(area.Markers{"chapter": area.NewBlock("", area.NewText("Intro"))}, true, true)
	feedPage(h, pv)
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	want := `<page key="p1" number="1" label="1" sequence="0">` +
		`<retrieveMarker class="chapter" position="first-starting">Intro</retrieveMarker>` +
		`<retrieveMarker class="section" position="last-ending"/></page>`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("marker not retrieved:\n%s", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestXMLWriteError(t *testing.T) {
	r, err := New(common.OutputFmtXml, failingWriter{}, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	feedPage(h, page("p1", 1))

	res, err := h.EndDocument()
	if err == nil {
		t.Error("expected finalize error")
	}
	if len(res.Failures) == 0 {
		t.Error("expected page failure")
	}
}

func readZip(t *testing.T, data []byte) (*zip.Reader, []string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return zr, names
}

func readIon(t *testing.T, zr *zip.Reader, name string, v any) {
	t.Helper()
	f, err := zr.Open(name)
	if err != nil {
		t.Fatalf("unable to open %s: %v", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("unable to read %s: %v", name, err)
	}
	if err := ion.Unmarshal(data, v); err != nil {
		t.Fatalf("unable to unmarshal %s: %v", name, err)
	}
}

func TestIonOutput(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtIon, &buf, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{Title: "main"})
	feedPage(h, page("p1", 1, area.NewLink("x", area.NewText("go")), area.NewCitation("missing", true)))
	feedPage(h, page("p2", 2, area.NewText("filler")))
	h.AddOffDocumentItem(&area.Attachment{Label: "note", Value: "v", When: area.ExtensionTimingAfterPage})
	feedPage(h, page("p3", 3, area.NewBlock("x")))
	h.SetOutline(&area.Outline{Bookmarks: []*area.Bookmark{{Title: "X", Ref: "x"}}})
	h.AddDestination("x")

	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	zr, names := readZip(t, buf.Bytes())
	want := []string{
		"mimetype",
		"pages/p2.ion",
		"pages/p3.ion",
		"extensions/0.ion",
		"pages/p1.ion",
		"outline.ion",
		"manifest.ion",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if zr.File[0].Method != zip.Store {
		t.Error("mimetype must be stored")
	}

	var m ionManifestData
	readIon(t, zr, "manifest.ion", &m)
	var order []string
	for _, e := range m.Pages {
		order = append(order, e.Key+":"+e.Status)
	}
	if diff := cmp.Diff([]string{"p1:rendered", "p2:rendered", "p3:rendered"}, order); diff != "" {
		t.Errorf("manifest page order mismatch (-want +got):\n%s", diff)
	}
	if m.ID != "doc-1" || m.Language != "en" || len(m.Sequences) != 1 || m.Outline != "outline.ion" {
		t.Errorf("unexpected manifest %+v", m)
	}
	if len(m.Destinations) != 1 || m.Destinations[0].Target != "p3" {
		t.Errorf("unexpected destinations %+v", m.Destinations)
	}

	var p ionPage
	readIon(t, zr, "pages/p1.ion", &p)
	if len(p.Regions) != 2 {
		t.Fatalf("unexpected regions %+v", p.Regions)
	}
	if link := p.Regions[0]; link.Label != "3" || link.Target != "p3" || link.Status != area.ResolutionResolved {
		t.Errorf("unexpected link %+v", link)
	}
	if cite := p.Regions[1]; cite.Label != "?" || cite.Status != area.ResolutionNeverDefined {
		t.Errorf("unexpected citation %+v", cite)
	}

	var outline []*ionBookmark
	readIon(t, zr, "outline.ion", &outline)
	if len(outline) != 1 || outline[0].Page != "3" || outline[0].Status != "resolved" {
		t.Errorf("unexpected outline %+v", outline)
	}
}

func TestIonRetrieveMarker(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(common.OutputFmtIon, &buf, testOptions(0), testLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	h := area.NewHandler(r, testLogger(t))
	h.StartPageSequence(&area.PageSequence{})

	pv := page("p1", 1,
		area.NewRetrieveMarker("chapter", area.RetrievePositionLastStarting),
		area.NewRetrieveMarker("missing", area.RetrievePositionFirstStarting),
	)
	pv.AddMarkers(area.Markers{"chapter": area.NewBlock("", area.NewText("One"))}, true, true)
	pv.AddMarkers(area.Markers{"chapter": area.NewBlock("", area.NewText("Two"))}, true, true)
	feedPage(h, pv)
	if _, err := h.EndDocument(); err != nil {
		t.Fatalf("EndDocument() error = %v", err)
	}

	zr, _ := readZip(t, buf.Bytes())
	var p ionPage
	readIon(t, zr, "pages/p1.ion", &p)
	if len(p.Regions) != 2 {
		t.Fatalf("unexpected regions %+v", p.Regions)
	}
	if got := p.Regions[0].Children; len(got) != 1 || got[0].Text != "Two" {
		t.Errorf("retrieved marker content %+v", got)
	}
	if got := p.Regions[0].Position; got != area.RetrievePositionLastStarting {
		t.Errorf("position = %s", got)
	}
	if got := p.Regions[1].Children; len(got) != 0 {
		t.Errorf("missing marker should retrieve nothing, got %+v", got)
	}
}
