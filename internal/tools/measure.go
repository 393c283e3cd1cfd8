package tools

import (
	"fmt"

	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
)

// measureDrag is the single phase shared by the ruler and the compass.
type measureDrag struct {
	origin raster.Snapshot
	anchor geom.Point
	end    geom.Point
}

func beginMeasure(env *Env, p geom.Point) *measureDrag {
	if !env.Canvas.Alive() {
		return nil
	}
	return &measureDrag{origin: env.Canvas.Snapshot(), anchor: p, end: p}
}

func (m *measureDrag) length() float64 { return geom.Distance(m.anchor, m.end) }

// RulerTool measures and draws straight segments.
type RulerTool struct {
	env  *Env
	drag *measureDrag
}

func (t *RulerTool) Name() Name { return Ruler }

func (t *RulerTool) Busy() bool { return t.drag != nil }

func (t *RulerTool) Down(p geom.Point, _ float64) {
	t.Cancel()
	t.drag = beginMeasure(t.env, p)
}

func (t *RulerTool) Move(p geom.Point, _ float64) {
	m := t.drag
	if m == nil || !t.env.Canvas.Alive() {
		return
	}
	m.end = p
	t.env.Canvas.Put(m.origin)
	dc := t.env.Canvas.Context()
	raster.Line(dc, m.anchor, m.end, t.env.pen().Dashed())
	r := t.readout(false)
	drawLabel(t.env, r.Text, r.At)
	t.env.readout(r)
}

func (t *RulerTool) Up(p geom.Point) {
	m := t.drag
	if m == nil {
		return
	}
	t.drag = nil
	if !t.env.Canvas.Alive() {
		return
	}
	m.end = p
	t.env.Canvas.Put(m.origin)
	if m.length() < t.env.Config.MinShape {
		return
	}
	dc := t.env.Canvas.Context()
	pen := t.env.pen()
	raster.Line(dc, m.anchor, m.end, pen)
	raster.Marker(dc, m.anchor, pen.Width+1, pen.Color)
	raster.Marker(dc, m.end, pen.Width+1, pen.Color)
	t.env.readout(measureReadout(t.env, Ruler, m, true))
	t.env.commit()
}

func (t *RulerTool) Cancel() {
	if t.drag == nil {
		return
	}
	t.env.Canvas.Put(t.drag.origin)
	t.drag = nil
}

func (t *RulerTool) readout(final bool) Readout {
	return measureReadout(t.env, Ruler, t.drag, final)
}

func measureReadout(env *Env, name Name, m *measureDrag, final bool) Readout {
	cm := centimetres(env, m.length())
	at := m.anchor.Lerp(m.end, 0.5).Add(geom.Pt(0, -16))
	if name == Compass {
		at = m.end.Add(geom.Pt(0, -16))
	}
	return Readout{
		Tool:   name,
		Text:   fmt.Sprintf("%.1f cm", cm),
		Value:  cm,
		At:     at,
		Target: m.end,
		Final:  final,
	}
}

// CompassTool draws circles around the pointer-down point, reporting the
// radius.
type CompassTool struct {
	env  *Env
	drag *measureDrag
}

func (t *CompassTool) Name() Name { return Compass }

func (t *CompassTool) Busy() bool { return t.drag != nil }

func (t *CompassTool) Down(p geom.Point, _ float64) {
	t.Cancel()
	t.drag = beginMeasure(t.env, p)
}

func (t *CompassTool) Move(p geom.Point, _ float64) {
	m := t.drag
	if m == nil || !t.env.Canvas.Alive() {
		return
	}
	m.end = p
	t.env.Canvas.Put(m.origin)
	dc := t.env.Canvas.Context()
	pen := t.env.pen().Dashed()
	raster.Line(dc, m.anchor, m.end, pen)
	raster.Circle(dc, m.anchor, m.length(), pen)
	r := measureReadout(t.env, Compass, m, false)
	drawLabel(t.env, r.Text, r.At)
	t.env.readout(r)
}

func (t *CompassTool) Up(p geom.Point) {
	m := t.drag
	if m == nil {
		return
	}
	t.drag = nil
	if !t.env.Canvas.Alive() {
		return
	}
	m.end = p
	t.env.Canvas.Put(m.origin)
	if m.length() < t.env.Config.MinShape {
		return
	}
	dc := t.env.Canvas.Context()
	pen := t.env.pen()
	raster.Circle(dc, m.anchor, m.length(), pen)
	raster.Marker(dc, m.anchor, pen.Width+1, pen.Color)
	raster.Marker(dc, m.end, pen.Width+1, pen.Color)
	t.env.readout(measureReadout(t.env, Compass, m, true))
	t.env.commit()
}

func (t *CompassTool) Cancel() {
	if t.drag == nil {
		return
	}
	t.env.Canvas.Put(t.drag.origin)
	t.drag = nil
}
