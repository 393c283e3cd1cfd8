package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"inkpdf/internal/geom"
	"inkpdf/internal/graph"
	"inkpdf/internal/pages"
	"inkpdf/internal/pdfdoc"
	"inkpdf/internal/raster"
	"inkpdf/internal/store"
	"inkpdf/internal/tools"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// memStore keeps the last saved payload as JSON, like the server would.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	loadErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Load(_ context.Context, id string) (*store.Annotations, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.data[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	var a store.Annotations
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (m *memStore) Save(_ context.Context, id string, a *store.Annotations) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = raw
	m.saves++
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func openViewer(t *testing.T, n int, cfg Config, opts ...Option) *Viewer {
	t.Helper()
	opts = append([]Option{WithClock(epoch)}, opts...)
	v := New(cfg, opts...)
	err := v.Open(context.Background(), func(context.Context) (pdfdoc.Document, error) {
		return pdfdoc.NewMemory(n), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func drawStroke(t *testing.T, v *Viewer, a, b geom.Point) {
	t.Helper()
	if err := v.PointerDown(a, 0.5); err != nil {
		t.Fatal(err)
	}
	v.PointerMove(a.Lerp(b, 0.5), 0.5)
	v.PointerMove(b, 0.5)
	v.PointerUp(b)
}

func canvas(t *testing.T, v *Viewer, d int) *raster.Canvas {
	t.Helper()
	c, err := v.Page(d)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func payloadKeys(t *testing.T, v *Viewer) []string {
	t.Helper()
	a, err := v.Payload()
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for k := range a.CanvasData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestOpenEmitsLoadedAndRendersFirstPage(t *testing.T) {
	v := New(DefaultConfig(), WithClock(epoch))
	var got []EventName
	v.On(EventPDFLoaded, func(e Event) { got = append(got, e.Name) })
	v.On(EventPageRendered, func(e Event) { got = append(got, e.Name) })
	if err := v.Open(context.Background(), func(context.Context) (pdfdoc.Document, error) {
		return pdfdoc.NewMemory(3), nil
	}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]EventName{EventPDFLoaded, EventPageRendered}, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	if v.TotalPages() != 3 || v.CurrentPage() != 1 {
		t.Errorf("pages %d current %d", v.TotalPages(), v.CurrentPage())
	}
	c := canvas(t, v, 1)
	if c.Width() != 612 || c.Height() != 792 {
		t.Errorf("canvas %dx%d", c.Width(), c.Height())
	}
}

func TestOpenFailureLeavesViewerEmpty(t *testing.T) {
	v := New(DefaultConfig())
	err := v.Open(context.Background(), func(context.Context) (pdfdoc.Document, error) {
		return nil, errors.New("corrupt")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if v.Loaded() {
		t.Error("viewer loaded after failure")
	}
	if _, err := v.Page(1); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Page: %v", err)
	}
}

func TestOpenIgnoresLoadFailure(t *testing.T) {
	ms := newMemStore()
	ms.loadErr = errors.New("server down")
	v := openViewer(t, 2, DefaultConfig(), WithStore(ms, "doc"))
	if v.TotalPages() != 2 {
		t.Errorf("pages = %d", v.TotalPages())
	}
}

func TestDrawUndoRedo(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	c := canvas(t, v, 1)
	if c.Blank() {
		t.Fatal("stroke not drawn")
	}
	if !v.Undo() {
		t.Fatal("undo refused")
	}
	if !c.Blank() {
		t.Error("undo left ink")
	}
	if v.Undo() {
		t.Error("undo past the initial state")
	}
	if !v.Redo() || c.Blank() {
		t.Error("redo did not restore the stroke")
	}
}

func TestZoomKeepsStrokesAndHistory(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	if err := v.SetScale(1.5); err != nil {
		t.Fatal(err)
	}
	c := canvas(t, v, 1)
	if c.Width() != 918 || c.Height() != 1188 {
		t.Fatalf("canvas %dx%d at 1.5", c.Width(), c.Height())
	}
	if c.Blank() {
		t.Fatal("stroke lost on zoom")
	}
	pv := v.views[pages.Original(1).Key()]
	if pv.engine.Len() != 1 {
		t.Fatalf("strokes = %d", pv.engine.Len())
	}
	if !v.Undo() || !c.Blank() {
		t.Fatal("undo after zoom did not clear the page")
	}
	if !v.Redo() || c.Blank() || pv.engine.Len() != 1 {
		t.Error("redo after zoom did not restore the stroke")
	}
}

func TestZoomClamps(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	for i := 0; i < 20; i++ {
		if err := v.ZoomIn(); err != nil {
			t.Fatal(err)
		}
	}
	if v.Scale() != 3 {
		t.Errorf("scale = %v", v.Scale())
	}
	if err := v.SetScale(0.1); err != nil {
		t.Fatal(err)
	}
	if v.Scale() != 0.5 {
		t.Errorf("scale = %v", v.Scale())
	}
}

func TestDeleteOriginalKeepsAnnotationsWithTheirPage(t *testing.T) {
	v := openViewer(t, 3, DefaultConfig())
	if err := v.SetPage(3); err != nil {
		t.Fatal(err)
	}
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	if err := v.DeletePage(1); err != nil {
		t.Fatal(err)
	}
	if v.CurrentPage() != 2 {
		t.Errorf("current = %d", v.CurrentPage())
	}
	if id, _ := v.Identifier(2); id != pages.Original(3) {
		t.Errorf("display 2 = %v", id)
	}
	if canvas(t, v, 2).Blank() {
		t.Error("annotations did not follow original page 3")
	}
	if !canvas(t, v, 1).Blank() {
		t.Error("original page 2 picked up annotations")
	}
	if diff := cmp.Diff([]string{"2"}, payloadKeys(t, v)); diff != "" {
		t.Errorf("canvasData keys (-want +got):\n%s", diff)
	}
	a, _ := v.Payload()
	if diff := cmp.Diff([]int{1}, a.PageStructure.DeletedPages); diff != "" {
		t.Errorf("deletedPages (-want +got):\n%s", diff)
	}
}

func TestInsertBlankShiftsFollowingPages(t *testing.T) {
	v := openViewer(t, 2, DefaultConfig())
	if err := v.SetPage(2); err != nil {
		t.Fatal(err)
	}
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	id, err := v.InsertBlank(1)
	if err != nil {
		t.Fatal(err)
	}
	if id.IsOriginal() || v.CurrentPage() != 2 || v.TotalPages() != 3 {
		t.Fatalf("inserted %v, current %d of %d", id, v.CurrentPage(), v.TotalPages())
	}
	if got, _ := v.Identifier(3); got != pages.Original(2) {
		t.Errorf("display 3 = %v", got)
	}
	if !canvas(t, v, 2).Blank() {
		t.Error("new blank page has ink")
	}
	if canvas(t, v, 3).Blank() {
		t.Error("annotations did not move with original page 2")
	}
	if diff := cmp.Diff([]string{"3"}, payloadKeys(t, v)); diff != "" {
		t.Errorf("canvasData keys (-want +got):\n%s", diff)
	}
	a, _ := v.Payload()
	if diff := cmp.Diff([]int{2}, a.PageStructure.BlankPages); diff != "" {
		t.Errorf("blankPages (-want +got):\n%s", diff)
	}
}

func TestDeleteLastPageRefused(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if err := v.DeletePage(1); !errors.Is(err, ErrLastPage) {
		t.Errorf("err = %v", err)
	}
	if err := v.DeletePage(5); !errors.Is(err, ErrNoPage) {
		t.Errorf("err = %v", err)
	}
}

func TestSavedAnnotationsReloadAfterDelete(t *testing.T) {
	ms := newMemStore()
	v := openViewer(t, 3, DefaultConfig(), WithStore(ms, "doc"))
	if err := v.SetPage(2); err != nil {
		t.Fatal(err)
	}
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	if err := v.DeletePage(1); err != nil {
		t.Fatal(err)
	}
	if err := v.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v.Dirty() {
		t.Error("dirty after save")
	}

	w := openViewer(t, 3, DefaultConfig(), WithStore(ms, "doc"))
	if w.TotalPages() != 2 {
		t.Fatalf("pages = %d", w.TotalPages())
	}
	if id, _ := w.Identifier(1); id != pages.Original(2) {
		t.Errorf("display 1 = %v", id)
	}
	if canvas(t, w, 1).Blank() {
		t.Error("saved annotations not restored")
	}
	if !canvas(t, w, 2).Blank() {
		t.Error("annotations restored on the wrong page")
	}
}

func TestAutoSaveDebounces(t *testing.T) {
	ms := newMemStore()
	cfg := DefaultConfig()
	cfg.SaveDelay = 3 * time.Second
	v := openViewer(t, 1, cfg, WithStore(ms, "doc"))
	saved := 0
	v.On(EventAnnotationsSaved, func(Event) { saved++ })

	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	v.Tick(epoch.Add(2 * time.Second))
	drawStroke(t, v, geom.Pt(100, 200), geom.Pt(300, 200))
	v.Tick(epoch.Add(4 * time.Second))
	v.Flush()
	if ms.count() != 0 {
		t.Fatalf("saved %d times before the quiet period ended", ms.count())
	}
	v.Tick(epoch.Add(5 * time.Second))
	v.Flush()
	if ms.count() != 1 || saved != 1 {
		t.Errorf("saves = %d, events = %d", ms.count(), saved)
	}
	if v.Dirty() {
		t.Error("dirty after auto-save")
	}
}

func TestCloseSavesPendingEdits(t *testing.T) {
	ms := newMemStore()
	v := openViewer(t, 1, DefaultConfig(), WithStore(ms, "doc"))
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	if err := v.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ms.count() != 1 {
		t.Errorf("saves = %d", ms.count())
	}
	if v.Loaded() {
		t.Error("still loaded after close")
	}
	v.Tick(epoch.Add(time.Hour))
	if ms.count() != 1 {
		t.Error("timer fired after close")
	}
}

func TestPreviewModeIsReadOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModePreview
	v := openViewer(t, 2, cfg)
	if err := v.PointerDown(geom.Pt(1, 1), 0.5); !errors.Is(err, ErrReadOnly) {
		t.Errorf("PointerDown: %v", err)
	}
	if err := v.SetTool(tools.Pen); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetTool: %v", err)
	}
	if _, err := v.InsertBlank(1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("InsertBlank: %v", err)
	}
	if err := v.DeletePage(1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("DeletePage: %v", err)
	}
}

func TestStudentModeGatesToolsAndColours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ModeStudent
	v := openViewer(t, 1, cfg)
	if err := v.SetTool(tools.Ruler); !errors.Is(err, ErrToolNotAllowed) {
		t.Errorf("ruler: %v", err)
	}
	if err := v.SetTool(tools.Highlighter); err != nil {
		t.Errorf("highlighter: %v", err)
	}
	if err := v.SetColor("#d32f2f"); !errors.Is(err, ErrColorNotAllowed) {
		t.Errorf("red: %v", err)
	}
	if err := v.SetColor("#1976d2"); err != nil {
		t.Errorf("blue: %v", err)
	}
}

func TestTextTool(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if err := v.SetTool(tools.Text); err != nil {
		t.Fatal(err)
	}
	if err := v.PointerDown(geom.Pt(40, 60), 0.5); err != nil {
		t.Fatal(err)
	}
	v.TextInsert("hi\nthere")
	v.TextBackspace()
	if diff := cmp.Diff([]string{"hi", "ther"}, v.Text().Lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if !canvas(t, v, 1).Blank() {
		t.Error("text drawn before commit")
	}
	v.TextCommit()
	if v.Text() != nil {
		t.Error("text still pending")
	}
	if canvas(t, v, 1).Blank() || !v.CanUndo() {
		t.Error("committed text not drawn or not in history")
	}
}

func maxAlpha(img *image.RGBA, xs []int, y int) uint8 {
	var m uint8
	for _, x := range xs {
		if a := img.RGBAAt(x, y).A; a > m {
			m = a
		}
	}
	return m
}

func TestGridToggleKeepsInk(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if err := v.ToggleGrid(); err != nil {
		t.Fatal(err)
	}
	c := canvas(t, v, 1)
	line := []int{19, 20, 21}
	if !v.GridOn() || maxAlpha(c.Annot, line, 700) == 0 {
		t.Fatal("grid not drawn")
	}
	drawStroke(t, v, geom.Pt(110, 110), geom.Pt(310, 110))
	if err := v.ToggleGrid(); err != nil {
		t.Fatal(err)
	}
	if v.GridOn() {
		t.Error("grid still on")
	}
	if maxAlpha(c.Annot, line, 700) != 0 {
		t.Error("grid line left behind")
	}
	if c.Annot.RGBAAt(210, 110).A == 0 {
		t.Error("ink drawn over the grid was removed")
	}
}

func TestGridFollowsUndoRedo(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	c := canvas(t, v, 1)
	line := []int{19, 20, 21}
	if err := v.ToggleGrid(); err != nil {
		t.Fatal(err)
	}
	if !v.Undo() {
		t.Fatal("nothing to undo")
	}
	if v.GridOn() || maxAlpha(c.Annot, line, 700) != 0 {
		t.Fatalf("after undo: on %v, line alpha %d", v.GridOn(), maxAlpha(c.Annot, line, 700))
	}
	if err := v.ToggleGrid(); err != nil {
		t.Fatal(err)
	}
	if !v.GridOn() || maxAlpha(c.Annot, line, 700) == 0 {
		t.Fatal("toggling after undo did not draw the grid")
	}

	if err := v.ToggleGrid(); err != nil {
		t.Fatal(err)
	}
	if !v.Undo() || !v.GridOn() || maxAlpha(c.Annot, line, 700) == 0 {
		t.Error("undoing the lift did not bring the grid back")
	}
	if !v.Redo() || v.GridOn() || maxAlpha(c.Annot, line, 700) != 0 {
		t.Error("redoing the lift left the grid on")
	}
}

func TestGraphPageFunctions(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if _, err := v.InsertGraph(0, graph.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	warnings, err := v.AddFunction("x^2", "")
	if err != nil || len(warnings) != 0 {
		t.Fatalf("x^2: %v %v", warnings, err)
	}
	warnings, err = v.AddFunction("sin(", "")
	if err != nil || len(warnings) != 1 {
		t.Fatalf("sin(: %v %v", warnings, err)
	}
	cfg, err := v.GraphConfig()
	if err != nil || len(cfg.Functions) != 2 {
		t.Fatalf("config %+v, %v", cfg, err)
	}
	a, _ := v.Payload()
	for _, added := range a.PageStructure.AddedPages {
		if !added.IsGraph || added.GraphConfig == nil || len(added.GraphConfig.Functions) != 2 {
			t.Errorf("persisted graph page %+v", added)
		}
	}
	if err := v.ClearFunctions(); err != nil {
		t.Fatal(err)
	}
	if err := v.NextPage(); err != nil {
		t.Fatal(err)
	}
	if _, err := v.AddFunction("x", ""); !errors.Is(err, ErrNotGraph) {
		t.Errorf("original page: %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	n := 0
	off := v.On(EventPagesChanged, func(Event) { n++ })
	if _, err := v.InsertBlank(0); err != nil {
		t.Fatal(err)
	}
	off()
	if _, err := v.InsertBlank(0); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("listener called %d times", n)
	}
}

func TestLayoutAndPageAt(t *testing.T) {
	v := openViewer(t, 2, DefaultConfig())
	boxes := v.Layout()
	want := []PageBox{
		{Display: 1, Y: 0, Width: 612, Height: 792},
		{Display: 2, Y: 812, Width: 612, Height: 792},
	}
	if diff := cmp.Diff(want, boxes); diff != "" {
		t.Errorf("layout (-want +got):\n%s", diff)
	}
	if d, y := v.PageAt(800); d != 1 || y != 800 {
		t.Errorf("PageAt(800) = %d, %v", d, y)
	}
	if d, y := v.PageAt(820); d != 2 || y != 8 {
		t.Errorf("PageAt(820) = %d, %v", d, y)
	}
}

func TestThumbnailCache(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	a, err := v.Thumbnail(1, 100)
	if err != nil {
		t.Fatal(err)
	}
	if a.Bounds().Dx() != 100 || a.Bounds().Dy() != 129 {
		t.Errorf("thumbnail %v", a.Bounds())
	}
	b, _ := v.Thumbnail(1, 100)
	if a != b {
		t.Error("thumbnail not cached")
	}
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	c, _ := v.Thumbnail(1, 100)
	if c == a {
		t.Error("thumbnail not invalidated by an edit")
	}
}

func TestRulerReadout(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if err := v.SetTool(tools.Ruler); err != nil {
		t.Fatal(err)
	}
	var events int
	v.On(EventReadout, func(Event) { events++ })
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(175.6, 100))
	r := v.LastReadout()
	if r.Text != "2.0 cm" || !r.Final {
		t.Errorf("readout %+v", r)
	}
	if events < 2 {
		t.Errorf("readout events = %d", events)
	}
}

func TestPenStabilizationFlashes(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	flashes := 0
	v.On(EventToolFlash, func(Event) { flashes++ })
	if err := v.PointerDown(geom.Pt(100, 100), 0.5); err != nil {
		t.Fatal(err)
	}
	v.PointerMove(geom.Pt(200, 100), 0.5)
	v.Tick(epoch.Add(time.Second))
	pen, ok := v.ActiveTool().(*tools.PenTool)
	if !ok || !pen.Straight() || flashes != 1 {
		t.Errorf("straight %v, flashes %d", ok && pen.Straight(), flashes)
	}
	v.PointerUp(geom.Pt(200, 100))
}

func TestPointerLeave(t *testing.T) {
	v := openViewer(t, 1, DefaultConfig())
	if err := v.SetTool(tools.Ruler); err != nil {
		t.Fatal(err)
	}
	_ = v.PointerDown(geom.Pt(100, 100), 0.5)
	v.PointerMove(geom.Pt(200, 100), 0.5)
	v.PointerLeave()
	if v.ActiveTool().Busy() || !canvas(t, v, 1).Blank() || v.CanUndo() {
		t.Error("leaving did not abandon the measurement")
	}

	if err := v.SetTool(tools.Pen); err != nil {
		t.Fatal(err)
	}
	_ = v.PointerDown(geom.Pt(100, 100), 0.5)
	v.PointerMove(geom.Pt(200, 100), 0.5)
	v.PointerLeave()
	if canvas(t, v, 1).Blank() || !v.CanUndo() {
		t.Error("leaving did not finish the stroke")
	}
}

type recordingBuilder struct {
	sizes  []pdfdoc.Size
	images int
	output bool
}

func (b *recordingBuilder) AddPage(w, h float64) {
	b.sizes = append(b.sizes, pdfdoc.Size{Width: w, Height: h})
}

func (b *recordingBuilder) AddImage(image.Image, float64, float64, float64, float64) error {
	b.images++
	return nil
}

func (b *recordingBuilder) DeletePage(int) error { return nil }

func (b *recordingBuilder) PageCount() int { return len(b.sizes) }

func (b *recordingBuilder) Output(context.Context, io.Writer) error {
	b.output = true
	return nil
}

func TestExportPDFWritesEveryPage(t *testing.T) {
	v := openViewer(t, 2, DefaultConfig())
	if _, err := v.InsertBlank(2); err != nil {
		t.Fatal(err)
	}
	var b recordingBuilder
	if err := v.ExportPDF(context.Background(), &b, io.Discard); err != nil {
		t.Fatal(err)
	}
	want := []pdfdoc.Size{pdfdoc.Letter, pdfdoc.Letter, pdfdoc.Letter}
	if diff := cmp.Diff(want, b.sizes); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
	if b.images != 3 || !b.output {
		t.Errorf("images %d, output %v", b.images, b.output)
	}
}

func TestAutoSaveSkipsGestureInProgress(t *testing.T) {
	ms := newMemStore()
	v := openViewer(t, 1, DefaultConfig(), WithStore(ms, "doc"))
	drawStroke(t, v, geom.Pt(100, 100), geom.Pt(300, 100))
	want, err := store.EncodePNG(canvas(t, v, 1).Snapshot().Image())
	if err != nil {
		t.Fatal(err)
	}

	if err := v.SetTool(tools.Protractor); err != nil {
		t.Fatal(err)
	}
	_ = v.PointerDown(geom.Pt(100, 300), 0.5)
	v.PointerMove(geom.Pt(250, 300), 0.5)
	v.Tick(epoch.Add(time.Second))
	v.PointerMove(geom.Pt(100, 450), 0.5)
	p, ok := v.ActiveTool().(*tools.ProtractorTool)
	if !ok || p.State() != "drawing-second" {
		t.Fatalf("protractor not measuring the second ray")
	}
	live, err := store.EncodePNG(canvas(t, v, 1).Snapshot().Image())
	if err != nil {
		t.Fatal(err)
	}
	if live == want {
		t.Fatal("protractor preview not on the page")
	}

	v.Tick(epoch.Add(3500 * time.Millisecond))
	v.Flush()
	if ms.count() != 1 {
		t.Fatalf("saves = %d", ms.count())
	}
	a, err := ms.Load(context.Background(), "doc")
	if err != nil {
		t.Fatal(err)
	}
	if a.CanvasData["1"].ImageData != want {
		t.Error("saved page differs from the last committed state")
	}
	if p.State() != "drawing-second" {
		t.Error("auto-save interrupted the gesture")
	}
}

func TestInterruptionCancelsValidationTimer(t *testing.T) {
	tests := []struct {
		name      string
		interrupt func(*Viewer) error
	}{
		{"undo", func(v *Viewer) error { v.Undo(); return nil }},
		{"page change", func(v *Viewer) error { return v.SetPage(2) }},
		{"tool switch", func(v *Viewer) error { return v.SetTool(tools.Pen) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := openViewer(t, 2, DefaultConfig())
			flashes := 0
			v.On(EventToolFlash, func(Event) { flashes++ })
			if err := v.SetTool(tools.Protractor); err != nil {
				t.Fatal(err)
			}
			_ = v.PointerDown(geom.Pt(100, 100), 0.5)
			v.PointerMove(geom.Pt(200, 100), 0.5)
			p := v.ActiveTool().(*tools.ProtractorTool)
			if p.State() != "waiting-validation" {
				t.Fatalf("state %s", p.State())
			}
			if err := tt.interrupt(v); err != nil {
				t.Fatal(err)
			}
			v.Tick(epoch.Add(5 * time.Second))
			if flashes != 0 || p.State() != "idle" {
				t.Errorf("flashes %d, state %s", flashes, p.State())
			}
			if !canvas(t, v, 1).Blank() || !canvas(t, v, 2).Blank() {
				t.Error("first ray baked after the gesture was interrupted")
			}
		})
	}
}
