// Package graph draws the coordinate plane hosted by graph pages and the
// square grid overlay of the grid tool.
package graph

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/floats"

	"inkpdf/internal/expr"
	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
)

// Function is one plotted expression of x.
type Function struct {
	Expr  string `json:"expression"`
	Color string `json:"color"`
}

// Config is the graphConfig carried by a graph page identifier.
type Config struct {
	XMin      float64    `json:"xMin"`
	XMax      float64    `json:"xMax"`
	YMin      float64    `json:"yMin"`
	YMax      float64    `json:"yMax"`
	Functions []Function `json:"functions,omitempty"`
}

// DefaultConfig is a symmetric -10..10 plane with no functions.
func DefaultConfig() Config {
	return Config{XMin: -10, XMax: 10, YMin: -10, YMax: 10}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.Functions = append([]Function(nil), c.Functions...)
	return out
}

// Valid reports whether both ranges are non-empty.
func (c Config) Valid() bool {
	return c.XMax > c.XMin && c.YMax > c.YMin
}

// Plane maps graph coordinates onto a w×h pixel area with a margin.
type Plane struct {
	cfg    Config
	w, h   float64
	margin float64
}

// NewPlane builds the mapping for cfg on a w×h page.
func NewPlane(cfg Config, w, h float64) Plane {
	return Plane{cfg: cfg, w: w, h: h, margin: math.Min(w, h) * 0.05}
}

// ToPixel converts graph coordinates to page pixels.
func (p Plane) ToPixel(x, y float64) geom.Point {
	iw, ih := p.w-2*p.margin, p.h-2*p.margin
	px := p.margin + (x-p.cfg.XMin)/(p.cfg.XMax-p.cfg.XMin)*iw
	py := p.margin + (p.cfg.YMax-y)/(p.cfg.YMax-p.cfg.YMin)*ih
	return geom.Pt(px, py)
}

var (
	gridColor  = raster.MustColor("#d8dee9")
	axisColor  = raster.MustColor("#2e3440")
	labelColor = raster.MustColor("#4c566a")
)

// DefaultColors cycles through function colors when none is set.
var DefaultColors = []string{"#bf616a", "#5e81ac", "#a3be8c", "#b48ead", "#d08770"}

// Samples is the number of x positions evaluated per function.
const Samples = 400

// Render draws the plane and every function onto dc. Functions that fail to
// parse are skipped and returned as warnings.
func Render(dc *gg.Context, cfg Config) []error {
	if dc == nil {
		return nil
	}
	if !cfg.Valid() {
		return []error{fmt.Errorf("graph: empty range x[%g,%g] y[%g,%g]", cfg.XMin, cfg.XMax, cfg.YMin, cfg.YMax)}
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	p := NewPlane(cfg, w, h)
	drawGridLines(dc, p)
	drawAxes(dc, p)

	var warnings []error
	for i, fn := range cfg.Functions {
		if err := plot(dc, p, fn, i); err != nil {
			warnings = append(warnings, fmt.Errorf("graph: function %d %q: %w", i+1, fn.Expr, err))
		}
	}
	return warnings
}

func drawGridLines(dc *gg.Context, p Plane) {
	pen := raster.Pen{Color: gridColor, Width: 1}
	for _, x := range ticks(p.cfg.XMin, p.cfg.XMax) {
		raster.Line(dc, p.ToPixel(x, p.cfg.YMin), p.ToPixel(x, p.cfg.YMax), pen)
	}
	for _, y := range ticks(p.cfg.YMin, p.cfg.YMax) {
		raster.Line(dc, p.ToPixel(p.cfg.XMin, y), p.ToPixel(p.cfg.XMax, y), pen)
	}
}

func drawAxes(dc *gg.Context, p Plane) {
	pen := raster.Pen{Color: axisColor, Width: 2}
	// axes sit on zero when it is in range, otherwise on the nearest edge
	ax := math.Max(p.cfg.XMin, math.Min(0, p.cfg.XMax))
	ay := math.Max(p.cfg.YMin, math.Min(0, p.cfg.YMax))
	raster.Arrow(dc, p.ToPixel(p.cfg.XMin, ay), p.ToPixel(p.cfg.XMax, ay), pen)
	raster.Arrow(dc, p.ToPixel(ax, p.cfg.YMin), p.ToPixel(ax, p.cfg.YMax), pen)

	size := math.Max(10, math.Min(float64(dc.Width()), float64(dc.Height()))/60)
	face, err := raster.Face(size)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(labelColor)
	for _, x := range ticks(p.cfg.XMin, p.cfg.XMax) {
		if x == 0 {
			continue
		}
		at := p.ToPixel(x, ay)
		raster.Line(dc, at.Add(geom.Pt(0, -4)), at.Add(geom.Pt(0, 4)), pen)
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(formatTick(x), at.X, at.Y+6, 0.5, 1)
	}
	for _, y := range ticks(p.cfg.YMin, p.cfg.YMax) {
		if y == 0 {
			continue
		}
		at := p.ToPixel(ax, y)
		raster.Line(dc, at.Add(geom.Pt(-4, 0)), at.Add(geom.Pt(4, 0)), pen)
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(formatTick(y), at.X-6, at.Y, 1, 0.5)
	}
}

func plot(dc *gg.Context, p Plane, fn Function, idx int) error {
	node, err := expr.Parse(fn.Expr)
	if err != nil {
		return err
	}
	spec := fn.Color
	if spec == "" {
		spec = DefaultColors[idx%len(DefaultColors)]
	}
	col, err := raster.ParseColor(spec)
	if err != nil {
		return err
	}
	pen := raster.Pen{Color: col, Width: 2}

	xs := floats.Span(make([]float64, Samples), p.cfg.XMin, p.cfg.XMax)
	// far outside the visible range a segment is broken rather than drawn
	span := p.cfg.YMax - p.cfg.YMin
	var run []geom.Point
	flush := func() {
		if len(run) > 1 {
			raster.Polyline(dc, run, pen)
		}
		run = run[:0]
	}
	for _, x := range xs {
		y := node.Eval(x)
		if math.IsNaN(y) || math.IsInf(y, 0) || y > p.cfg.YMax+span || y < p.cfg.YMin-span {
			flush()
			continue
		}
		run = append(run, p.ToPixel(x, y))
	}
	flush()
	return nil
}

// ticks returns "nice" values inside [lo, hi] roughly ten apart.
func ticks(lo, hi float64) []float64 {
	step := niceStep((hi - lo) / 10)
	if step <= 0 {
		return nil
	}
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		out = append(out, math.Round(v/step)*step)
	}
	return out
}

func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsInf(raw, 0) || math.IsNaN(raw) {
		return 0
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	}
	return 10 * mag
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%g", v)
}

// GridSpacing is the default grid tool cell size in pixels at scale 1.
const GridSpacing = 20.0

// DrawGrid draws the grid tool's square grid over the whole context.
func DrawGrid(dc *gg.Context, spacing float64, c string) {
	if dc == nil || spacing <= 0 {
		return
	}
	col, err := raster.ParseColor(c)
	if err != nil {
		col = gridColor
	}
	pen := raster.Pen{Color: col, Width: 1}
	w, h := float64(dc.Width()), float64(dc.Height())
	for x := spacing; x < w; x += spacing {
		raster.Line(dc, geom.Pt(x, 0), geom.Pt(x, h), pen)
	}
	for y := spacing; y < h; y += spacing {
		raster.Line(dc, geom.Pt(0, y), geom.Pt(w, y), pen)
	}
}
