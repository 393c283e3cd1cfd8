// Package viewer ties a PDF document, its page sequence and the drawing
// tools into one annotation session. All methods must be called from a
// single goroutine; the host advances timers by calling Tick.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"golang.org/x/sync/errgroup"

	"inkpdf/internal/geom"
	"inkpdf/internal/history"
	"inkpdf/internal/logx"
	"inkpdf/internal/pages"
	"inkpdf/internal/pdfdoc"
	"inkpdf/internal/raster"
	"inkpdf/internal/sched"
	"inkpdf/internal/store"
	"inkpdf/internal/stroke"
	"inkpdf/internal/tools"
)

var (
	ErrNotOpen         = errors.New("no document open")
	ErrReadOnly        = errors.New("viewer is read-only")
	ErrToolNotAllowed  = errors.New("tool not available in this mode")
	ErrColorNotAllowed = errors.New("colour not available in this mode")
	ErrNotGraph        = errors.New("page is not a graph page")
	ErrNoPage          = pages.ErrNoPage
	ErrLastPage        = pages.ErrLastPage
)

// EventName identifies a viewer event.
type EventName string

const (
	EventPDFLoaded        EventName = "pdf-loaded"
	EventPageRendered     EventName = "page-rendered"
	EventViewModeChanged  EventName = "view-mode-changed"
	EventAnnotationsSaved EventName = "annotations-saved"
	EventPagesChanged     EventName = "pages-changed"
	EventToolFlash        EventName = "tool-flash"
	EventReadout          EventName = "readout"
	EventWarning          EventName = "warning"
)

// Event is delivered to listeners. Page is a display number, 0 when the
// event is not about one page.
type Event struct {
	Name EventName
	Page int
	Data any
}

// Listener receives events.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// pageView is the live canvas of one page at the current scale.
type pageView struct {
	id     pages.Identifier
	canvas *raster.Canvas
	engine *stroke.Engine
	vp     pdfdoc.Viewport
}

type saveResult struct {
	err error
	at  time.Time
}

// Viewer is one annotation session.
type Viewer struct {
	cfg    Config
	log    logx.Logger
	store  store.Store
	fileID string
	sched  *sched.Scheduler

	doc       pdfdoc.Document
	structure *pages.Structure
	history   *history.Manager
	pageSize  pdfdoc.Size

	views   map[string]*pageView
	pending map[string]store.PageImage
	grids   map[string]*gridState
	thumbs  map[int]*thumbnail

	current  int
	scale    float64
	viewMode ViewMode

	toolName tools.Name
	tool     tools.Tool
	toolKey  string
	color    color.RGBA
	size     float64
	text     *TextInput
	pointer  geom.Point
	readout  tools.Readout

	listeners map[EventName][]listenerEntry
	nextID    int

	saveTimer *sched.Timer
	saves     chan saveResult
	inflight  int
	dirty     bool
	closed    bool
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger.
func WithLogger(l logx.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

// WithStore sets where annotations are loaded from and saved to.
func WithStore(s store.Store, fileID string) Option {
	return func(v *Viewer) {
		v.store = s
		v.fileID = fileID
	}
}

// WithClock starts the viewer's timer clock at t.
func WithClock(t time.Time) Option {
	return func(v *Viewer) { v.sched = sched.New(t) }
}

// New returns a viewer with no document.
func New(cfg Config, opts ...Option) *Viewer {
	cfg.normalize()
	v := &Viewer{
		cfg:       cfg,
		log:       logx.Nop(),
		views:     make(map[string]*pageView),
		pending:   make(map[string]store.PageImage),
		grids:     make(map[string]*gridState),
		thumbs:    make(map[int]*thumbnail),
		scale:     cfg.InitialZoom,
		viewMode:  cfg.ViewMode,
		toolName:  tools.Pen,
		size:      cfg.Size,
		listeners: make(map[EventName][]listenerEntry),
		saves:     make(chan saveResult, 8),
		history:   history.NewManager(cfg.HistoryDepth),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.sched == nil {
		v.sched = sched.New(time.Now())
	}
	c, err := raster.ParseColor(cfg.Color)
	if err != nil {
		v.log.Warn("invalid colour, using black", logx.String("color", cfg.Color))
		c = color.RGBA{A: 255}
	}
	v.color = c
	if cfg.Mode == ModePreview {
		v.toolName = ""
	}
	return v
}

// Opener produces the document to annotate.
type Opener func(ctx context.Context) (pdfdoc.Document, error)

// OpenFile opens the PDF at path.
func (v *Viewer) OpenFile(ctx context.Context, path string) error {
	return v.Open(ctx, func(ctx context.Context) (pdfdoc.Document, error) {
		return pdfdoc.Open(ctx, path)
	})
}

// Open loads the document and its saved annotations concurrently. A
// document failure leaves the viewer untouched. An annotation failure is
// logged and the session starts empty.
func (v *Viewer) Open(ctx context.Context, open Opener) error {
	if v.closed {
		return ErrNotOpen
	}
	var (
		doc   pdfdoc.Document
		saved *store.Annotations
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := open(gctx)
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		doc = d
		return nil
	})
	if v.store != nil {
		g.Go(func() error {
			a, err := v.store.Load(gctx, v.fileID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				v.log.Debug("no saved annotations", logx.String("file", v.fileID))
			case err != nil:
				v.log.Warn("failed to load annotations", logx.String("file", v.fileID), logx.Err(err))
			default:
				saved = a
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if doc != nil {
			doc.Close()
		}
		return err
	}
	if doc.NumPages() < 1 {
		doc.Close()
		return fmt.Errorf("failed to open document: %w", ErrNoPage)
	}

	v.reset()
	v.doc = doc
	v.pageSize = pdfdoc.Letter
	if p, err := doc.Page(1); err == nil {
		v.pageSize = p.Size()
	}
	v.structure = pages.New(doc.NumPages())
	if saved != nil {
		v.adopt(saved)
	}
	v.current = 1
	v.log.Info("document opened", logx.Int("pages", v.structure.TotalPages()), logx.Int("original", doc.NumPages()))
	v.emit(Event{Name: EventPDFLoaded, Data: v.structure.TotalPages()})
	if _, err := v.view(v.current); err != nil {
		v.log.Warn("failed to render first page", logx.Err(err))
	}
	return nil
}

// adopt installs saved annotations. Saved images are keyed by the display
// numbers of the saved structure, so they are resolved against it.
func (v *Viewer) adopt(a *store.Annotations) {
	rec := a.PageStructure
	if rec.TotalPages > 0 || len(rec.DeletedPages) > 0 || len(rec.AddedPages) > 0 || len(rec.BlankPages) > 0 {
		s, err := pages.FromRecord(v.doc.NumPages(), rec)
		if err != nil {
			v.log.Warn("saved page structure repaired", logx.Err(err))
		}
		v.structure = s
	}
	for num, pi := range a.CanvasData {
		var d int
		if _, err := fmt.Sscanf(num, "%d", &d); err != nil {
			v.log.Warn("ignoring saved page", logx.String("page", num))
			continue
		}
		id, ok := v.structure.Identifier(d)
		if !ok {
			v.log.Warn("ignoring saved page beyond the document", logx.Int("page", d))
			continue
		}
		v.pending[id.Key()] = pi
	}
}

func (v *Viewer) reset() {
	v.sched.StopAll()
	v.dropTool()
	for _, pv := range v.views {
		pv.canvas.Dispose()
	}
	if v.doc != nil {
		v.doc.Close()
	}
	v.views = make(map[string]*pageView)
	v.pending = make(map[string]store.PageImage)
	v.grids = make(map[string]*gridState)
	v.thumbs = make(map[int]*thumbnail)
	v.history = history.NewManager(v.cfg.HistoryDepth)
	v.text = nil
	v.dirty = false
}

// Close cancels every timer, saves pending edits when auto-save is on,
// releases the document and drops every listener. The viewer cannot be
// reused.
func (v *Viewer) Close(ctx context.Context) error {
	if v.closed {
		return nil
	}
	v.Flush()
	var err error
	if v.doc != nil {
		v.commitText()
		if v.dirty && v.cfg.AutoSave && v.store != nil {
			err = v.Save(ctx)
		}
	}
	v.reset()
	v.doc = nil
	v.closed = true
	v.listeners = make(map[EventName][]listenerEntry)
	return err
}

// On subscribes fn to an event and returns a function that unsubscribes it.
func (v *Viewer) On(name EventName, fn Listener) func() {
	v.nextID++
	id := v.nextID
	v.listeners[name] = append(v.listeners[name], listenerEntry{id: id, fn: fn})
	return func() {
		ls := v.listeners[name]
		for i, l := range ls {
			if l.id == id {
				v.listeners[name] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

func (v *Viewer) emit(e Event) {
	for _, l := range append([]listenerEntry(nil), v.listeners[e.Name]...) {
		l.fn(e)
	}
}

// Tick advances the timer clock to now, fires due timers and delivers the
// results of finished background saves.
func (v *Viewer) Tick(now time.Time) {
	if v.closed {
		return
	}
	v.sched.AdvanceTo(now)
	v.drainSaves(false)
}

// Now is the viewer's clock.
func (v *Viewer) Now() time.Time { return v.sched.Now() }

// Config returns the effective configuration.
func (v *Viewer) Config() Config { return v.cfg }

// Mode is the configured mode.
func (v *Viewer) Mode() Mode { return v.cfg.Mode }

// Loaded reports whether a document is open.
func (v *Viewer) Loaded() bool { return v.doc != nil && !v.closed }

// TotalPages is the number of display pages.
func (v *Viewer) TotalPages() int {
	if v.structure == nil {
		return 0
	}
	return v.structure.TotalPages()
}

// CurrentPage is the focused display page.
func (v *Viewer) CurrentPage() int { return v.current }

// Identifier returns the page shown at display number d.
func (v *Viewer) Identifier(d int) (pages.Identifier, bool) {
	if v.structure == nil {
		return pages.Identifier{}, false
	}
	return v.structure.Identifier(d)
}

// Scale is the current zoom.
func (v *Viewer) Scale() float64 { return v.scale }

// ViewMode is the current layout.
func (v *Viewer) ViewMode() ViewMode { return v.viewMode }

// SetViewMode switches between single and continuous layout.
func (v *Viewer) SetViewMode(m ViewMode) {
	if m == v.viewMode {
		return
	}
	v.viewMode = m
	v.emit(Event{Name: EventViewModeChanged, Data: m})
}

// LastReadout is the most recent tool measurement.
func (v *Viewer) LastReadout() tools.Readout { return v.readout }

// CanUndo reports whether the current page has something to undo.
func (v *Viewer) CanUndo() bool {
	id, ok := v.Identifier(v.current)
	return ok && v.history.CanUndo(id.Key())
}

// CanRedo reports whether the current page has something to redo.
func (v *Viewer) CanRedo() bool {
	id, ok := v.Identifier(v.current)
	return ok && v.history.CanRedo(id.Key())
}
