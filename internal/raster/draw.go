package raster

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"inkpdf/internal/geom"
)

// Pen describes how an outline is stroked.
type Pen struct {
	Color color.RGBA
	Width float64
	Dash  []float64
}

// Dashed returns a copy of p with the preview dash pattern applied.
func (p Pen) Dashed() Pen {
	p.Dash = []float64{6, 4}
	return p
}

func (p Pen) apply(dc *gg.Context) {
	dc.SetColor(p.Color)
	w := p.Width
	if w <= 0 {
		w = 1
	}
	dc.SetLineWidth(w)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	if len(p.Dash) > 0 {
		dc.SetDash(p.Dash...)
	} else {
		dc.SetDash()
	}
}

// Line strokes a segment from a to b.
func Line(dc *gg.Context, a, b geom.Point, p Pen) {
	p.apply(dc)
	dc.DrawLine(a.X, a.Y, b.X, b.Y)
	dc.Stroke()
}

// Polyline strokes the points as one path.
func Polyline(dc *gg.Context, pts []geom.Point, p Pen) {
	if len(pts) == 0 {
		return
	}
	p.apply(dc)
	if len(pts) == 1 {
		dc.SetDash()
		dc.DrawCircle(pts[0].X, pts[0].Y, math.Max(p.Width/2, 0.5))
		dc.Fill()
		return
	}
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		dc.LineTo(q.X, q.Y)
	}
	dc.Stroke()
}

// Circle strokes a circle.
func Circle(dc *gg.Context, c geom.Point, r float64, p Pen) {
	p.apply(dc)
	dc.DrawCircle(c.X, c.Y, r)
	dc.Stroke()
}

// Arc strokes the circular arc from start to end degrees, sweeping in
// increasing angle.
func Arc(dc *gg.Context, c geom.Point, r, start, end float64, p Pen) {
	if r <= 0 {
		return
	}
	p.apply(dc)
	dc.NewSubPath()
	dc.DrawArc(c.X, c.Y, r, geom.Radians(start), geom.Radians(end))
	dc.Stroke()
}

// Rect strokes the axis-aligned rectangle spanned by a and b.
func Rect(dc *gg.Context, a, b geom.Point, p Pen) {
	p.apply(dc)
	dc.DrawRectangle(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
	dc.Stroke()
}

// Arrow strokes a shaft from a to b and fills a head at b.
func Arrow(dc *gg.Context, a, b geom.Point, p Pen) {
	d := geom.Distance(a, b)
	if d < 0.1 {
		return
	}
	head := math.Max(10, p.Width*4)
	if head > d {
		head = d
	}
	ux, uy := (b.X-a.X)/d, (b.Y-a.Y)/d
	base := geom.Pt(b.X-ux*head, b.Y-uy*head)
	Line(dc, a, base, p)

	spread := head * 0.5
	dc.SetDash()
	dc.SetColor(p.Color)
	dc.MoveTo(b.X, b.Y)
	dc.LineTo(base.X+uy*spread, base.Y-ux*spread)
	dc.LineTo(base.X-uy*spread, base.Y+ux*spread)
	dc.ClosePath()
	dc.Fill()
}

// Marker fills a small dot, used for ruler and compass endpoints.
func Marker(dc *gg.Context, at geom.Point, size float64, c color.RGBA) {
	dc.SetDash()
	dc.SetColor(c)
	dc.DrawCircle(at.X, at.Y, size)
	dc.Fill()
}

// Polygon fills the closed outline pts with the nonzero rule.
func Polygon(dc *gg.Context, pts []geom.Point, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	dc.SetColor(c)
	dc.SetFillRuleWinding()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		dc.LineTo(q.X, q.Y)
	}
	dc.ClosePath()
	dc.Fill()
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error

	facesMu sync.Mutex
	faces   = map[float64]font.Face{}
)

// Face returns the monospace face at size points, cached per size.
func Face(size float64) (font.Face, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	if monoErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", monoErr)
	}
	size = math.Round(size*4) / 4
	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f, nil
	}
	f := truetype.NewFace(monoFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faces[size] = f
	return f, nil
}

// Text draws lines top-aligned at the given origin, one line height apart.
func Text(dc *gg.Context, lines []string, at geom.Point, size float64, c color.RGBA) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(c)
	lineHeight := size * 1.2
	for i, line := range lines {
		dc.DrawStringAnchored(line, at.X, at.Y+float64(i)*lineHeight, 0, 1)
	}
	return nil
}

// Label draws a short readout centred on at, over a translucent plate.
func Label(dc *gg.Context, text string, at geom.Point, size float64, c color.RGBA) error {
	face, err := Face(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	w, h := dc.MeasureString(text)
	dc.SetDash()
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRoundedRectangle(at.X-w/2-4, at.Y-h/2-3, w+8, h+6, 3)
	dc.Fill()
	dc.SetColor(c)
	dc.DrawStringAnchored(text, at.X, at.Y, 0.5, 0.35)
	return nil
}

// ParseColor reads "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b, a uint8 = 0, 0, 0, 255
	var err error
	switch len(s) {
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		r, g, b = r*17, g*17, b*17
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		err = fmt.Errorf("invalid color %q", s)
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// MustColor is ParseColor for compile-time constants.
func MustColor(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// HexColor formats c as "#rrggbb", or "#rrggbbaa" when not opaque.
func HexColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha replaced, premultiplying the channels.
func WithAlpha(c color.RGBA, alpha float64) color.RGBA {
	alpha = math.Max(0, math.Min(1, alpha))
	// color.RGBA is premultiplied.
	base := float64(c.A) / 255
	k := 1.0
	if base > 0 {
		k = alpha / base
	}
	return color.RGBA{
		R: uint8(math.Round(float64(c.R) * k)),
		G: uint8(math.Round(float64(c.G) * k)),
		B: uint8(math.Round(float64(c.B) * k)),
		A: uint8(math.Round(alpha * 255)),
	}
}
