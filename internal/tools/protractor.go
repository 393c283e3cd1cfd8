package tools

import (
	"math"

	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
	"inkpdf/internal/sched"
)

// Protractor states. Exactly one is current at any time.
type protractorState interface{ protractorState() string }

type protIdle struct{}

// protFirst previews the first ray while it is still short of the
// validation distance.
type protFirst struct {
	origin raster.Snapshot
	center geom.Point
	end    geom.Point
}

// protWaiting previews the first ray with the hold-still timer armed.
type protWaiting struct {
	origin raster.Snapshot
	center geom.Point
	end    geom.Point
	timer  *sched.Timer
}

// protSecond has the first ray baked into clean and previews the second.
type protSecond struct {
	origin raster.Snapshot
	clean  raster.Snapshot
	center geom.Point
	first  geom.Point
}

func (*protIdle) protractorState() string    { return "idle" }
func (*protFirst) protractorState() string   { return "drawing-first" }
func (*protWaiting) protractorState() string { return "waiting-validation" }
func (*protSecond) protractorState() string  { return "drawing-second" }

// ProtractorTool measures the angle between two rays drawn in one gesture:
// drag out the first ray, hold still to validate it, then sweep the second
// ray and release.
type ProtractorTool struct {
	env   *Env
	state protractorState
}

func (t *ProtractorTool) Name() Name { return Protractor }

// State names the current phase.
func (t *ProtractorTool) State() string {
	if t.state == nil {
		return (*protIdle)(nil).protractorState()
	}
	return t.state.protractorState()
}

func (t *ProtractorTool) Busy() bool {
	_, idle := t.state.(*protIdle)
	return t.state != nil && !idle
}

func (t *ProtractorTool) Down(p geom.Point, _ float64) {
	t.Cancel()
	if !t.env.Canvas.Alive() {
		return
	}
	t.state = &protFirst{origin: t.env.Canvas.Snapshot(), center: p, end: p}
}

func (t *ProtractorTool) Move(p geom.Point, _ float64) {
	if !t.env.Canvas.Alive() {
		return
	}
	cfg := t.env.Config
	switch st := t.state.(type) {
	case *protFirst:
		st.end = p
		if geom.Distance(st.center, p) > cfg.ValidationDistance {
			w := &protWaiting{origin: st.origin, center: st.center, end: p}
			w.timer = t.env.Sched.After(cfg.ValidationDelay, func() { t.validate(w) })
			t.state = w
		}
		t.previewFirst(st.origin, st.center, p)
	case *protWaiting:
		st.end = p
		if geom.Distance(st.center, p) <= cfg.ValidationDistance {
			st.timer.Stop()
			t.state = &protFirst{origin: st.origin, center: st.center, end: p}
		} else {
			st.timer.Reset(cfg.ValidationDelay)
		}
		t.previewFirst(st.origin, st.center, p)
	case *protSecond:
		a := geom.ResolveAngle(st.center, st.first, p, cfg.SnapTolerance)
		t.env.Canvas.Put(st.clean)
		pen := t.env.pen().Dashed()
		if a.Snapped {
			pen.Color = snapColor
		}
		dc := t.env.Canvas.Context()
		raster.Line(dc, st.center, a.Endpoint, pen)
		t.drawAngleArc(st.center, st.first, a, pen)
		r := t.readout(st, a, false)
		drawLabel(t.env, r.Text, r.At)
		t.env.readout(r)
	}
}

func (t *ProtractorTool) Up(p geom.Point) {
	switch st := t.state.(type) {
	case *protFirst, *protWaiting:
		t.Cancel()
	case *protSecond:
		t.state = &protIdle{}
		if !t.env.Canvas.Alive() {
			return
		}
		a := geom.ResolveAngle(st.center, st.first, p, t.env.Config.SnapTolerance)
		t.env.Canvas.Put(st.clean)
		pen := t.env.pen()
		dc := t.env.Canvas.Context()
		raster.Line(dc, st.center, a.Endpoint, pen)
		t.drawAngleArc(st.center, st.first, a, pen)
		t.env.readout(t.readout(st, a, true))
		t.env.commit()
	}
}

// Cancel drops the gesture, including a first ray that was already baked.
func (t *ProtractorTool) Cancel() {
	switch st := t.state.(type) {
	case *protFirst:
		t.env.Canvas.Put(st.origin)
	case *protWaiting:
		st.timer.Stop()
		t.env.Canvas.Put(st.origin)
	case *protSecond:
		t.env.Canvas.Put(st.origin)
	}
	t.state = &protIdle{}
}

// validate bakes the first ray once the pointer has held still.
func (t *ProtractorTool) validate(w *protWaiting) {
	if t.state != protractorState(w) || !t.env.Canvas.Alive() {
		return
	}
	t.env.Canvas.Put(w.origin)
	pen := t.env.pen()
	dc := t.env.Canvas.Context()
	raster.Line(dc, w.center, w.end, pen)
	raster.Marker(dc, w.center, pen.Width+1, pen.Color)
	t.state = &protSecond{
		origin: w.origin,
		clean:  t.env.Canvas.Snapshot(),
		center: w.center,
		first:  w.end,
	}
	t.env.flash(w.end)
}

func (t *ProtractorTool) previewFirst(origin raster.Snapshot, center, end geom.Point) {
	t.env.Canvas.Put(origin)
	raster.Line(t.env.Canvas.Context(), center, end, t.env.pen().Dashed())
}

// drawAngleArc marks the measured angle with a short arc near the center.
func (t *ProtractorTool) drawAngleArc(center, first geom.Point, a geom.Angular, pen raster.Pen) {
	r := math.Min(30, 0.5*math.Min(geom.Distance(center, first), geom.Distance(center, a.Endpoint)))
	start, end := geom.MinorArc(a.Start, a.End)
	raster.Arc(t.env.Canvas.Context(), center, r, start, end, pen)
}

func (t *ProtractorTool) readout(st *protSecond, a geom.Angular, final bool) Readout {
	start, end := geom.MinorArc(a.Start, a.End)
	return Readout{
		Tool:    Protractor,
		Text:    formatDegrees(a),
		Value:   a.Display,
		At:      geom.PointOnRay(st.center, (start+end)/2, 48),
		Target:  a.Endpoint,
		Snapped: a.Snapped,
		Final:   final,
	}
}
