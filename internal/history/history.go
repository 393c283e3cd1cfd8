// Package history keeps per-page undo and redo stacks of hybrid snapshots:
// the annotation raster plus the vector export of the page's strokes.
package history

import (
	"inkpdf/internal/raster"
	"inkpdf/internal/stroke"
)

// DefaultDepth bounds each page's undo stack.
const DefaultDepth = 20

// Entry is one saved state of a page.
type Entry struct {
	Raster raster.Snapshot
	Vector *stroke.Export
	Width  int
	Height int
	Scale  float64
}

type pageStacks struct {
	undo []Entry
	redo []Entry
}

// Manager owns the stacks of every page, keyed by stable page key.
type Manager struct {
	depth int
	pages map[string]*pageStacks
}

// NewManager returns a manager bounding undo stacks to depth entries.
func NewManager(depth int) *Manager {
	if depth < 2 {
		depth = DefaultDepth
	}
	return &Manager{depth: depth, pages: make(map[string]*pageStacks)}
}

// Capture builds an entry from the live state of a page.
func Capture(c *raster.Canvas, e *stroke.Engine) Entry {
	ent := Entry{
		Raster: c.Snapshot(),
		Width:  c.Width(),
		Height: c.Height(),
		Scale:  c.Scale,
	}
	if e != nil {
		v := e.Export()
		ent.Vector = &v
	}
	return ent
}

// Init records the initial state of a page. It does nothing if the page
// already has history.
func (m *Manager) Init(key string, c *raster.Canvas, e *stroke.Engine) {
	if _, ok := m.pages[key]; ok || c == nil {
		return
	}
	m.pages[key] = &pageStacks{undo: []Entry{Capture(c, e)}}
}

// Save pushes the live state of a page, clears its redo stack and evicts the
// oldest entries beyond the depth bound.
func (m *Manager) Save(key string, c *raster.Canvas, e *stroke.Engine) {
	if c == nil {
		return
	}
	ps, ok := m.pages[key]
	if !ok {
		ps = &pageStacks{}
		m.pages[key] = ps
	}
	ps.undo = append(ps.undo, Capture(c, e))
	ps.redo = nil
	if over := len(ps.undo) - m.depth; over > 0 {
		ps.undo = append([]Entry(nil), ps.undo[over:]...)
	}
}

// Undo steps the page back one entry. It reports false, changing nothing,
// when fewer than two entries exist.
func (m *Manager) Undo(key string, c *raster.Canvas, e *stroke.Engine) bool {
	ps, ok := m.pages[key]
	if !ok || len(ps.undo) < 2 || c == nil {
		return false
	}
	last := len(ps.undo) - 1
	ps.redo = append(ps.redo, ps.undo[last])
	ps.undo = ps.undo[:last]
	Restore(c, e, ps.undo[last-1])
	return true
}

// Redo re-applies the most recently undone entry, which becomes the live
// state on top of the undo stack.
func (m *Manager) Redo(key string, c *raster.Canvas, e *stroke.Engine) bool {
	ps, ok := m.pages[key]
	if !ok || len(ps.redo) == 0 || c == nil {
		return false
	}
	last := len(ps.redo) - 1
	ent := ps.redo[last]
	ps.redo = ps.redo[:last]
	ps.undo = append(ps.undo, ent)
	Restore(c, e, ent)
	return true
}

// Top returns the live entry of a page.
func (m *Manager) Top(key string) (Entry, bool) {
	ps, ok := m.pages[key]
	if !ok || len(ps.undo) == 0 {
		return Entry{}, false
	}
	return ps.undo[len(ps.undo)-1], true
}

// Len returns the sizes of a page's undo and redo stacks.
func (m *Manager) Len(key string) (undo, redo int) {
	ps, ok := m.pages[key]
	if !ok {
		return 0, 0
	}
	return len(ps.undo), len(ps.redo)
}

// CanUndo reports whether Undo would change the page.
func (m *Manager) CanUndo(key string) bool {
	u, _ := m.Len(key)
	return u >= 2
}

// CanRedo reports whether Redo would change the page.
func (m *Manager) CanRedo(key string) bool {
	_, r := m.Len(key)
	return r > 0
}

// Forget drops a page's history.
func (m *Manager) Forget(key string) {
	delete(m.pages, key)
}

// Reset replaces a page's history with a single entry taken from the live
// state.
func (m *Manager) Reset(key string, c *raster.Canvas, e *stroke.Engine) {
	delete(m.pages, key)
	m.Init(key, c, e)
}

// Restore puts ent back onto the canvas and engine.
//
// At the entry's own scale the raster is put back verbatim. At any other
// scale the vector strokes are scaled by the ratio and re-rendered crisp, and
// the raster (holding highlighter, shapes, text) is resampled and
// composited beneath them.
func Restore(c *raster.Canvas, e *stroke.Engine, ent Entry) {
	if !c.Alive() {
		return
	}
	c.Clear()
	ratio := ScaleRatio(ent.Scale, c.Scale)
	if ratio == 1 && ent.Width == c.Width() && ent.Height == c.Height() {
		c.Put(ent.Raster)
		if e != nil {
			if ent.Vector != nil {
				e.Import(*ent.Vector)
			} else {
				e.Clear()
			}
		}
		return
	}

	if e != nil {
		if ent.Vector != nil {
			e.Import(stroke.ScaleExport(*ent.Vector, ratio))
		} else {
			e.Clear()
		}
		e.RenderAllStrokes(c.Context())
	}
	if !ent.Raster.Empty() {
		c.DrawBeneath(ent.Raster.Image())
	}
}

// ScaleRatio returns to/from, treating unknown scales as 1.
func ScaleRatio(from, to float64) float64 {
	if from <= 0 || to <= 0 {
		return 1
	}
	return to / from
}
