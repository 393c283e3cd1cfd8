package stroke

import (
	"image/color"

	"github.com/fogleman/gg"

	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
)

// Stroke is one freehand stroke: its samples, style and derived outline.
type Stroke struct {
	Samples []Sample
	Style   Style

	outline []geom.Point
	dirty   bool
}

// Outline returns the filled polygon of the stroke, recomputing it when the
// samples changed.
func (s *Stroke) Outline() []geom.Point {
	if s.dirty || s.outline == nil {
		s.outline = Outline(s.Samples, s.Style)
		s.dirty = false
	}
	return s.outline
}

func (s *Stroke) touch() { s.dirty = true }

// Record is the plain-data form of a stroke.
type Record struct {
	Samples []Sample `json:"samples"`
	Style   Style    `json:"style"`
}

// Export is the plain-data form of every finished stroke on a page.
type Export struct {
	Strokes []Record `json:"strokes"`
}

// Clone returns a deep copy.
func (e Export) Clone() Export {
	out := Export{Strokes: make([]Record, len(e.Strokes))}
	for i, r := range e.Strokes {
		out.Strokes[i] = Record{Samples: append([]Sample(nil), r.Samples...), Style: r.Style}
	}
	return out
}

// ScaleExport returns e with every sample position and stroke size multiplied
// by ratio. It does not modify e.
func ScaleExport(e Export, ratio float64) Export {
	out := e.Clone()
	for i := range out.Strokes {
		rec := &out.Strokes[i]
		for j := range rec.Samples {
			rec.Samples[j].X *= ratio
			rec.Samples[j].Y *= ratio
		}
		rec.Style.Size *= ratio
	}
	return out
}

// Engine holds the vector strokes of one page and the stroke in progress.
type Engine struct {
	style   Style
	strokes []*Stroke
	current *Stroke
}

// NewEngine returns an empty engine drawing new strokes with style.
func NewEngine(style Style) *Engine {
	return &Engine{style: style}
}

// SetStyle changes the style of strokes started from now on.
func (e *Engine) SetStyle(st Style) { e.style = st }

// Style returns the style for new strokes.
func (e *Engine) Style() Style { return e.style }

// Len returns the number of finished strokes.
func (e *Engine) Len() int { return len(e.strokes) }

// Drawing reports whether a stroke is in progress.
func (e *Engine) Drawing() bool { return e.current != nil }

// StartPath begins a new stroke, discarding any unfinished one.
func (e *Engine) StartPath(x, y, pressure float64) {
	e.current = &Stroke{Style: e.style, Samples: []Sample{{x, y, pressure}}, dirty: true}
}

// AddPoint appends a sample to the stroke in progress.
func (e *Engine) AddPoint(x, y, pressure float64) {
	if e.current == nil {
		return
	}
	e.current.Samples = append(e.current.Samples, Sample{x, y, pressure})
	e.current.touch()
}

// Current returns a copy of the samples of the stroke in progress.
func (e *Engine) Current() []Sample {
	if e.current == nil {
		return nil
	}
	return append([]Sample(nil), e.current.Samples...)
}

// ReplaceCurrent swaps the samples of the stroke in progress.
func (e *Engine) ReplaceCurrent(samples []Sample) {
	if e.current == nil || len(samples) == 0 {
		return
	}
	e.current.Samples = append([]Sample(nil), samples...)
	e.current.touch()
}

// EndPath finishes the stroke in progress and reports whether there was one.
func (e *Engine) EndPath() bool {
	if e.current == nil {
		return false
	}
	e.strokes = append(e.strokes, e.current)
	e.current = nil
	return true
}

// CancelPath drops the stroke in progress.
func (e *Engine) CancelPath() { e.current = nil }

// Clear drops every stroke.
func (e *Engine) Clear() {
	e.strokes = nil
	e.current = nil
}

// EraseNear removes every finished stroke with a sample within r of p and
// returns how many were removed.
func (e *Engine) EraseNear(p geom.Point, r float64) int {
	kept := e.strokes[:0]
	removed := 0
	for _, s := range e.strokes {
		if touches(s, p, r) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(e.strokes); i++ {
		e.strokes[i] = nil
	}
	e.strokes = kept
	return removed
}

func touches(s *Stroke, p geom.Point, r float64) bool {
	reach := r + s.Style.Size/2
	for _, smp := range s.Samples {
		if geom.Distance(smp.Point(), p) <= reach {
			return true
		}
	}
	return false
}

// Export returns the finished strokes as plain data.
func (e *Engine) Export() Export {
	out := Export{Strokes: make([]Record, 0, len(e.strokes))}
	for _, s := range e.strokes {
		out.Strokes = append(out.Strokes, Record{
			Samples: append([]Sample(nil), s.Samples...),
			Style:   s.Style,
		})
	}
	return out
}

// Import replaces the finished strokes with data. The stroke in progress is
// dropped.
func (e *Engine) Import(data Export) {
	e.current = nil
	e.strokes = make([]*Stroke, 0, len(data.Strokes))
	for _, r := range data.Strokes {
		if len(r.Samples) == 0 {
			continue
		}
		e.strokes = append(e.strokes, &Stroke{
			Samples: append([]Sample(nil), r.Samples...),
			Style:   r.Style,
			dirty:   true,
		})
	}
}

// RenderCurrentStroke fills the stroke in progress onto dc.
func (e *Engine) RenderCurrentStroke(dc *gg.Context) {
	if dc == nil || e.current == nil {
		return
	}
	render(dc, e.current)
}

// RenderAllStrokes fills every finished stroke onto dc.
func (e *Engine) RenderAllStrokes(dc *gg.Context) {
	if dc == nil {
		return
	}
	for _, s := range e.strokes {
		render(dc, s)
	}
}

func render(dc *gg.Context, s *Stroke) {
	c, err := raster.ParseColor(s.Style.Color)
	if err != nil {
		c = color.RGBA{A: 255}
	}
	raster.Polygon(dc, s.Outline(), c)
}
