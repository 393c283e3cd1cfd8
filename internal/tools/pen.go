package tools

import (
	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
	"inkpdf/internal/sched"
	"inkpdf/internal/stroke"
)

// penStroke is the state of a freehand stroke in progress.
type penStroke struct {
	origin   raster.Snapshot
	start    geom.Point
	last     geom.Point
	armedAt  geom.Point
	pressure float64
	timer    *sched.Timer
	straight bool
}

// PenTool feeds pointer samples to the page's stroke engine. Holding the
// pointer still turns the stroke into a straight segment.
type PenTool struct {
	env    *Env
	stroke *penStroke
}

func (t *PenTool) Name() Name { return Pen }

func (t *PenTool) Busy() bool { return t.stroke != nil }

// Straight reports whether the stroke in progress has been stabilized.
func (t *PenTool) Straight() bool { return t.stroke != nil && t.stroke.straight }

func (t *PenTool) Down(p geom.Point, pressure float64) {
	env := t.env
	if env.Engine == nil || !env.Canvas.Alive() {
		return
	}
	t.Cancel()
	ps := &penStroke{
		origin:   env.Canvas.Snapshot(),
		start:    p,
		last:     p,
		armedAt:  p,
		pressure: env.pressure(pressure),
	}
	env.Engine.StartPath(p.X, p.Y, ps.pressure)
	ps.timer = env.Sched.After(env.Config.StabilizeDelay, func() { t.stabilize(ps) })
	t.stroke = ps
	t.redraw()
}

func (t *PenTool) Move(p geom.Point, pressure float64) {
	ps := t.stroke
	if ps == nil || ps.straight {
		return
	}
	env := t.env
	pr := env.pressure(pressure)
	if geom.Distance(ps.last, p) > env.Config.InterpolateGap {
		for _, q := range geom.Interpolate(ps.last, p, env.Config.InterpolateStep) {
			env.Engine.AddPoint(q.X, q.Y, pr)
		}
	}
	env.Engine.AddPoint(p.X, p.Y, pr)
	ps.last = p
	ps.pressure = pr
	if geom.Distance(ps.armedAt, p) > env.Config.StabilizeMoveTolerance {
		ps.armedAt = p
		ps.timer.Reset(env.Config.StabilizeDelay)
	}
	t.redraw()
}

func (t *PenTool) Up(geom.Point) {
	ps := t.stroke
	if ps == nil {
		return
	}
	ps.timer.Stop()
	t.stroke = nil
	if !t.env.Canvas.Alive() {
		t.env.Engine.CancelPath()
		return
	}
	t.env.Canvas.Put(ps.origin)
	t.env.Engine.RenderCurrentStroke(t.env.Canvas.Context())
	t.env.Engine.EndPath()
	t.env.commit()
}

func (t *PenTool) Cancel() {
	ps := t.stroke
	if ps == nil {
		return
	}
	ps.timer.Stop()
	t.stroke = nil
	t.env.Engine.CancelPath()
	t.env.Canvas.Put(ps.origin)
}

// stabilize replaces the stroke with a straight segment from its start to
// the current pointer position.
func (t *PenTool) stabilize(ps *penStroke) {
	if t.stroke != ps || ps.straight || !t.env.Canvas.Alive() || !t.env.Engine.Drawing() {
		return
	}
	if geom.Distance(ps.start, ps.last) < t.env.Config.StabilizeMinDistance {
		return
	}
	t.env.Engine.ReplaceCurrent([]stroke.Sample{
		{X: ps.start.X, Y: ps.start.Y, Pressure: ps.pressure},
		{X: ps.last.X, Y: ps.last.Y, Pressure: ps.pressure},
	})
	ps.straight = true
	t.redraw()
	t.env.flash(ps.last)
}

// redraw repaints the whole stroke in progress over the pre-stroke pixels.
func (t *PenTool) redraw() {
	ps := t.stroke
	if ps == nil || !t.env.Canvas.Alive() {
		return
	}
	t.env.Canvas.Put(ps.origin)
	t.env.Engine.RenderCurrentStroke(t.env.Canvas.Context())
}
