// Package tools implements the pointer-driven drawing tools. Each tool is a
// small state machine bound to one page canvas. Geometric tools share the
// preview-then-commit lifecycle: pointer-down captures a clean copy of the
// annotation layer, every move restores it and draws a dashed preview, and
// pointer-up draws the solid result and asks the host to save history.
package tools

import (
	"fmt"
	"image/color"
	"time"

	"inkpdf/internal/geom"
	"inkpdf/internal/logx"
	"inkpdf/internal/raster"
	"inkpdf/internal/sched"
	"inkpdf/internal/stroke"
)

// Name identifies a tool.
type Name string

const (
	Pen         Name = "pen"
	Highlighter Name = "highlighter"
	Eraser      Name = "eraser"
	Ruler       Name = "ruler"
	Compass     Name = "compass"
	Protractor  Name = "protractor"
	Arc         Name = "arc"
	Arrow       Name = "arrow"
	Rectangle   Name = "rectangle"
	Circle      Name = "circle"
	Text        Name = "text"
)

// All lists every pointer tool in menu order. Text is handled by the viewer.
var All = []Name{Pen, Highlighter, Eraser, Ruler, Compass, Protractor, Arc, Arrow, Rectangle, Circle}

// Config holds the timing and distance tunables shared by the tools.
type Config struct {
	StabilizeDelay         time.Duration
	StabilizeMinDistance   float64
	StabilizeMoveTolerance float64
	ValidationDelay        time.Duration
	ValidationDistance     float64
	SnapTolerance          float64
	PixelsPerCm            float64
	InterpolateGap         float64
	InterpolateStep        float64
	PressureSensitive      bool
	MinShape               float64
	HighlighterAlpha       float64
	HighlighterWidth       float64
	EraserRadius           float64
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		StabilizeDelay:         time.Second,
		StabilizeMinDistance:   20,
		StabilizeMoveTolerance: 10,
		ValidationDelay:        time.Second,
		ValidationDistance:     20,
		SnapTolerance:          2,
		PixelsPerCm:            37.8,
		InterpolateGap:         5,
		InterpolateStep:        3,
		MinShape:               2,
		HighlighterAlpha:       0.35,
		HighlighterWidth:       4,
		EraserRadius:           12,
	}
}

// Readout is a live measurement shown next to the pointer.
type Readout struct {
	Tool  Name
	Text  string
	Value float64
	At    geom.Point
	// Target is the measured end point: the ruler end, the compass radius
	// point, or the (possibly snapped) end of the second ray.
	Target  geom.Point
	Snapped bool
	Final   bool
}

// Env binds a tool to one page.
type Env struct {
	Canvas *raster.Canvas
	Engine *stroke.Engine
	Sched  *sched.Scheduler
	Config Config
	Color  color.RGBA
	Size   float64
	Log    logx.Logger

	// Commit is called after every permanent change to the canvas.
	Commit func()
	// Readout receives measurements while a geometric tool is dragged.
	Readout func(Readout)
	// Flash signals that a hold-still timer validated a phase.
	Flash func(at geom.Point)
}

func (e *Env) commit() {
	if e.Commit != nil {
		e.Commit()
	}
}

func (e *Env) readout(r Readout) {
	if e.Readout != nil {
		e.Readout(r)
	}
}

func (e *Env) flash(at geom.Point) {
	if e.Flash != nil {
		e.Flash(at)
	}
}

func (e *Env) pen() raster.Pen {
	w := e.Size
	if w <= 0 {
		w = 2
	}
	return raster.Pen{Color: e.Color, Width: w}
}

func (e *Env) pressure(p float64) float64 {
	if !e.Config.PressureSensitive || p <= 0 {
		return 0.5
	}
	return p
}

// Tool is the pointer protocol every tool implements.
type Tool interface {
	Name() Name
	Down(p geom.Point, pressure float64)
	Move(p geom.Point, pressure float64)
	Up(p geom.Point)
	// Cancel abandons the gesture in progress, stops its timers and restores
	// the annotation layer as it was before the gesture began.
	Cancel()
	// Busy reports whether a gesture is in progress.
	Busy() bool
}

// New returns the named tool bound to env.
func New(name Name, env *Env) (Tool, error) {
	if env == nil || env.Canvas == nil {
		return nil, fmt.Errorf("tool %s: no canvas", name)
	}
	if env.Log == nil {
		env.Log = logx.Nop()
	}
	if env.Sched == nil {
		// timers on a private scheduler never fire
		env.Sched = sched.New(time.Now())
	}
	switch name {
	case Pen:
		return &PenTool{env: env}, nil
	case Highlighter:
		return &HighlighterTool{env: env}, nil
	case Eraser:
		return &EraserTool{env: env}, nil
	case Ruler:
		return &RulerTool{env: env}, nil
	case Compass:
		return &CompassTool{env: env}, nil
	case Protractor:
		return &ProtractorTool{env: env}, nil
	case Arc:
		return &ArcTool{env: env}, nil
	case Arrow, Rectangle, Circle:
		return &ShapeTool{env: env, kind: name}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

var (
	snapColor  = raster.MustColor("#2e7d32")
	labelColor = raster.MustColor("#263238")
)

const labelSize = 12

// drawLabel renders a readout plate on the preview.
func drawLabel(env *Env, text string, at geom.Point) {
	dc := env.Canvas.Context()
	if dc == nil {
		return
	}
	if err := raster.Label(dc, text, at, labelSize, labelColor); err != nil {
		env.Log.Warn("label failed", logx.Err(err))
	}
}

// centimetres converts a canvas distance to centimetres at the canvas scale.
func centimetres(env *Env, px float64) float64 {
	scale := env.Canvas.Scale
	if scale <= 0 {
		scale = 1
	}
	ppc := env.Config.PixelsPerCm
	if ppc <= 0 {
		ppc = DefaultConfig().PixelsPerCm
	}
	return px / (ppc * scale)
}

func formatDegrees(a geom.Angular) string {
	if a.Snapped {
		return fmt.Sprintf("%.0f°", a.Display)
	}
	return fmt.Sprintf("%.1f°", a.Display)
}
