package tools

import (
	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
)

type shapeDrag struct {
	origin raster.Snapshot
	anchor geom.Point
}

// ShapeTool draws arrows, rectangles and circles. A circle is centred on the
// pointer-down point. Gestures shorter than Config.MinShape are dropped.
type ShapeTool struct {
	env  *Env
	kind Name
	drag *shapeDrag
}

func (t *ShapeTool) Name() Name { return t.kind }

func (t *ShapeTool) Busy() bool { return t.drag != nil }

func (t *ShapeTool) Down(p geom.Point, _ float64) {
	t.Cancel()
	if !t.env.Canvas.Alive() {
		return
	}
	t.drag = &shapeDrag{origin: t.env.Canvas.Snapshot(), anchor: p}
}

func (t *ShapeTool) Move(p geom.Point, _ float64) {
	d := t.drag
	if d == nil || !t.env.Canvas.Alive() {
		return
	}
	t.env.Canvas.Put(d.origin)
	t.draw(d.anchor, p, t.env.pen().Dashed())
}

func (t *ShapeTool) Up(p geom.Point) {
	d := t.drag
	if d == nil {
		return
	}
	t.drag = nil
	if !t.env.Canvas.Alive() {
		return
	}
	t.env.Canvas.Put(d.origin)
	if geom.Distance(d.anchor, p) < t.env.Config.MinShape {
		return
	}
	t.draw(d.anchor, p, t.env.pen())
	t.env.commit()
}

func (t *ShapeTool) Cancel() {
	if t.drag == nil {
		return
	}
	t.env.Canvas.Put(t.drag.origin)
	t.drag = nil
}

func (t *ShapeTool) draw(a, b geom.Point, pen raster.Pen) {
	dc := t.env.Canvas.Context()
	switch t.kind {
	case Arrow:
		raster.Arrow(dc, a, b, pen)
	case Rectangle:
		raster.Rect(dc, a, b, pen)
	case Circle:
		raster.Circle(dc, a, geom.Distance(a, b), pen)
	}
}
