package tools

import (
	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
	"inkpdf/internal/sched"
)

// Arc states.
type arcState interface{ arcState() string }

type arcIdle struct{}

type arcRadius struct {
	origin raster.Snapshot
	center geom.Point
	end    geom.Point
}

type arcWaiting struct {
	origin raster.Snapshot
	center geom.Point
	end    geom.Point
	timer  *sched.Timer
}

// arcSweep has center and radius fixed; the pointer chooses the end angle.
type arcSweep struct {
	origin raster.Snapshot
	center geom.Point
	from   geom.Point
	radius float64
}

func (*arcIdle) arcState() string    { return "idle" }
func (*arcRadius) arcState() string  { return "drawing-radius" }
func (*arcWaiting) arcState() string { return "waiting-validation" }
func (*arcSweep) arcState() string   { return "drawing-arc" }

// ArcTool draws a circular arc of at most half a turn: drag out the radius,
// hold still to fix it, then sweep to the end angle and release. Only the
// arc itself is kept.
type ArcTool struct {
	env   *Env
	state arcState
}

func (t *ArcTool) Name() Name { return Arc }

func (t *ArcTool) State() string {
	if t.state == nil {
		return (*arcIdle)(nil).arcState()
	}
	return t.state.arcState()
}

func (t *ArcTool) Busy() bool {
	_, idle := t.state.(*arcIdle)
	return t.state != nil && !idle
}

func (t *ArcTool) Down(p geom.Point, _ float64) {
	t.Cancel()
	if !t.env.Canvas.Alive() {
		return
	}
	t.state = &arcRadius{origin: t.env.Canvas.Snapshot(), center: p, end: p}
}

func (t *ArcTool) Move(p geom.Point, _ float64) {
	if !t.env.Canvas.Alive() {
		return
	}
	cfg := t.env.Config
	switch st := t.state.(type) {
	case *arcRadius:
		st.end = p
		if geom.Distance(st.center, p) > cfg.ValidationDistance {
			w := &arcWaiting{origin: st.origin, center: st.center, end: p}
			w.timer = t.env.Sched.After(cfg.ValidationDelay, func() { t.validate(w) })
			t.state = w
		}
		t.previewRadius(st.origin, st.center, p)
	case *arcWaiting:
		st.end = p
		if geom.Distance(st.center, p) <= cfg.ValidationDistance {
			st.timer.Stop()
			t.state = &arcRadius{origin: st.origin, center: st.center, end: p}
		} else {
			st.timer.Reset(cfg.ValidationDelay)
		}
		t.previewRadius(st.origin, st.center, p)
	case *arcSweep:
		a, end := t.resolve(st, p)
		t.env.Canvas.Put(st.origin)
		pen := t.env.pen().Dashed()
		if a.Snapped {
			pen.Color = snapColor
		}
		dc := t.env.Canvas.Context()
		raster.Line(dc, st.center, st.from, pen)
		raster.Line(dc, st.center, end, pen)
		start, stop := geom.MinorArc(a.Start, a.End)
		raster.Arc(dc, st.center, st.radius, start, stop, pen)
		r := t.readout(a, end, false)
		drawLabel(t.env, r.Text, r.At)
		t.env.readout(r)
	}
}

func (t *ArcTool) Up(p geom.Point) {
	switch st := t.state.(type) {
	case *arcRadius, *arcWaiting:
		t.Cancel()
	case *arcSweep:
		t.state = &arcIdle{}
		if !t.env.Canvas.Alive() {
			return
		}
		a, end := t.resolve(st, p)
		t.env.Canvas.Put(st.origin)
		start, stop := geom.MinorArc(a.Start, a.End)
		raster.Arc(t.env.Canvas.Context(), st.center, st.radius, start, stop, t.env.pen())
		t.env.readout(t.readout(a, end, true))
		t.env.commit()
	}
}

func (t *ArcTool) Cancel() {
	switch st := t.state.(type) {
	case *arcRadius:
		t.env.Canvas.Put(st.origin)
	case *arcWaiting:
		st.timer.Stop()
		t.env.Canvas.Put(st.origin)
	case *arcSweep:
		t.env.Canvas.Put(st.origin)
	}
	t.state = &arcIdle{}
}

func (t *ArcTool) validate(w *arcWaiting) {
	if t.state != arcState(w) || !t.env.Canvas.Alive() {
		return
	}
	t.state = &arcSweep{
		origin: w.origin,
		center: w.center,
		from:   w.end,
		radius: geom.Distance(w.center, w.end),
	}
	t.env.flash(w.end)
}

// resolve snaps the sweep and returns the arc end point on the fixed radius.
func (t *ArcTool) resolve(st *arcSweep, p geom.Point) (geom.Angular, geom.Point) {
	a := geom.ResolveAngle(st.center, st.from, p, t.env.Config.SnapTolerance)
	return a, geom.PointOnRay(st.center, a.End, st.radius)
}

func (t *ArcTool) previewRadius(origin raster.Snapshot, center, end geom.Point) {
	t.env.Canvas.Put(origin)
	pen := t.env.pen().Dashed()
	dc := t.env.Canvas.Context()
	raster.Line(dc, center, end, pen)
	raster.Circle(dc, center, geom.Distance(center, end), pen)
}

func (t *ArcTool) readout(a geom.Angular, end geom.Point, final bool) Readout {
	return Readout{
		Tool:    Arc,
		Text:    formatDegrees(a),
		Value:   a.Display,
		At:      end.Add(geom.Pt(0, -16)),
		Target:  end,
		Snapped: a.Snapped,
		Final:   final,
	}
}
