package tools

import (
	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
)

// HighlighterTool draws a wide translucent polyline straight into the
// raster. Highlights have no vector form.
type HighlighterTool struct {
	env    *Env
	origin raster.Snapshot
	points []geom.Point
	active bool
}

func (t *HighlighterTool) Name() Name { return Highlighter }

func (t *HighlighterTool) Busy() bool { return t.active }

func (t *HighlighterTool) Down(p geom.Point, _ float64) {
	if !t.env.Canvas.Alive() {
		return
	}
	t.Cancel()
	t.origin = t.env.Canvas.Snapshot()
	t.points = []geom.Point{p}
	t.active = true
	t.redraw()
}

func (t *HighlighterTool) Move(p geom.Point, _ float64) {
	if !t.active {
		return
	}
	t.points = append(t.points, p)
	t.redraw()
}

func (t *HighlighterTool) Up(geom.Point) {
	if !t.active {
		return
	}
	t.active = false
	t.redraw0()
	t.points = nil
	t.origin = raster.Snapshot{}
	t.env.commit()
}

func (t *HighlighterTool) Cancel() {
	if !t.active {
		return
	}
	t.active = false
	t.env.Canvas.Put(t.origin)
	t.points = nil
}

func (t *HighlighterTool) redraw() {
	if t.active {
		t.redraw0()
	}
}

func (t *HighlighterTool) redraw0() {
	dc := t.env.Canvas.Context()
	if dc == nil {
		return
	}
	t.env.Canvas.Put(t.origin)
	pen := t.env.pen()
	pen.Width *= t.env.Config.HighlighterWidth
	pen.Color = raster.WithAlpha(pen.Color, t.env.Config.HighlighterAlpha)
	raster.Polyline(dc, t.points, pen)
}

// EraserTool clears raster pixels under a disc and drops every vector
// stroke the disc touches. What is left of a dropped stroke stays in the
// raster.
type EraserTool struct {
	env     *Env
	last    geom.Point
	active  bool
	changed bool
}

func (t *EraserTool) Name() Name { return Eraser }

func (t *EraserTool) Busy() bool { return t.active }

func (t *EraserTool) Down(p geom.Point, _ float64) {
	if !t.env.Canvas.Alive() {
		return
	}
	t.active = true
	t.changed = false
	t.last = p
	t.erase(p)
}

func (t *EraserTool) Move(p geom.Point, _ float64) {
	if !t.active {
		return
	}
	r := t.radius()
	for _, q := range geom.Interpolate(t.last, p, r/2) {
		t.erase(q)
	}
	t.erase(p)
	t.last = p
}

func (t *EraserTool) Up(geom.Point) {
	if !t.active {
		return
	}
	t.active = false
	if t.changed {
		t.env.commit()
	}
}

// Cancel ends the gesture. Erased pixels stay erased until undo.
func (t *EraserTool) Cancel() { t.Up(t.last) }

func (t *EraserTool) radius() float64 {
	r := t.env.Config.EraserRadius
	if r <= 0 {
		r = 12
	}
	return r * t.env.Canvas.Scale
}

func (t *EraserTool) erase(p geom.Point) {
	r := t.radius()
	// touched strokes must not be re-vectorized over the hole after a zoom
	if t.env.Engine != nil {
		t.env.Engine.EraseNear(p, r)
	}
	t.env.Canvas.EraseDisc(p.X, p.Y, r)
	t.changed = true
}
