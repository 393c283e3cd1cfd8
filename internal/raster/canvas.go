// Package raster owns the per-page pixel state: the rendered PDF page (base)
// and the transparent annotation layer drawn on top of it.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Canvas is one displayed page. Both layers always share the same size.
type Canvas struct {
	Base  *image.RGBA
	Annot *image.RGBA
	Scale float64

	disposed bool
}

// New returns a canvas of w×h pixels at the given scale with a white base and
// an empty annotation layer.
func New(w, h int, scale float64) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Base:  image.NewRGBA(image.Rect(0, 0, w, h)),
		Annot: image.NewRGBA(image.Rect(0, 0, w, h)),
		Scale: scale,
	}
	draw.Draw(c.Base, c.Base.Bounds(), image.White, image.Point{}, draw.Src)
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.Annot.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.Annot.Bounds().Dy() }

// Dispose marks the canvas as torn down. Drawing on a disposed canvas is
// ignored, which protects against timers that fire after a page is rebuilt.
func (c *Canvas) Dispose() { c.disposed = true }

// Alive reports whether the canvas can still be drawn on.
func (c *Canvas) Alive() bool { return c != nil && !c.disposed }

// Context returns a gg context drawing straight into the annotation layer.
// It returns nil for a disposed canvas.
func (c *Canvas) Context() *gg.Context {
	if !c.Alive() {
		return nil
	}
	return gg.NewContextForRGBA(c.Annot)
}

// SetBase replaces the base layer. img is resampled when its size differs.
func (c *Canvas) SetBase(img image.Image) {
	if !c.Alive() || img == nil {
		return
	}
	if img.Bounds().Size() == c.Base.Bounds().Size() {
		draw.Draw(c.Base, c.Base.Bounds(), img, img.Bounds().Min, draw.Src)
		return
	}
	xdraw.CatmullRom.Scale(c.Base, c.Base.Bounds(), img, img.Bounds(), xdraw.Src, nil)
}

// Snapshot copies the annotation layer.
func (c *Canvas) Snapshot() Snapshot {
	return SnapshotOf(c.Annot)
}

// Put overwrites the annotation layer with s. A snapshot of a different size
// is resampled to fit.
func (c *Canvas) Put(s Snapshot) {
	if !c.Alive() || s.Empty() {
		return
	}
	if s.Width == c.Width() && s.Height == c.Height() {
		copy(c.Annot.Pix, s.Pix)
		return
	}
	c.Clear()
	xdraw.CatmullRom.Scale(c.Annot, c.Annot.Bounds(), s.Image(), image.Rect(0, 0, s.Width, s.Height), xdraw.Src, nil)
}

// Clear erases the annotation layer.
func (c *Canvas) Clear() {
	if !c.Alive() {
		return
	}
	for i := range c.Annot.Pix {
		c.Annot.Pix[i] = 0
	}
}

// Blank reports whether the annotation layer has no visible pixel.
func (c *Canvas) Blank() bool {
	for i := 3; i < len(c.Annot.Pix); i += 4 {
		if c.Annot.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// DrawBeneath composites img under the current annotation pixels
// (destination-over), resampling it to the canvas size first.
func (c *Canvas) DrawBeneath(img image.Image) {
	if !c.Alive() || img == nil {
		return
	}
	under := image.NewRGBA(c.Annot.Bounds())
	if img.Bounds().Size() == under.Bounds().Size() {
		draw.Draw(under, under.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(under, under.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	}
	draw.Draw(under, under.Bounds(), c.Annot, image.Point{}, draw.Over)
	copy(c.Annot.Pix, under.Pix)
}

// EraseDisc clears annotation pixels within radius r of (x, y).
func (c *Canvas) EraseDisc(x, y, r float64) {
	if !c.Alive() || r <= 0 {
		return
	}
	b := c.Annot.Bounds()
	x0, x1 := clampInt(int(x-r), b.Min.X, b.Max.X), clampInt(int(x+r)+1, b.Min.X, b.Max.X)
	y0, y1 := clampInt(int(y-r), b.Min.Y, b.Max.Y), clampInt(int(y+r)+1, b.Min.Y, b.Max.Y)
	r2 := r * r
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			dx, dy := float64(px)+0.5-x, float64(py)+0.5-y
			if dx*dx+dy*dy <= r2 {
				c.Annot.SetRGBA(px, py, color.RGBA{})
			}
		}
	}
}

// Composite returns the base with the annotation layer drawn over it.
func (c *Canvas) Composite() *image.RGBA {
	out := image.NewRGBA(c.Base.Bounds())
	draw.Draw(out, out.Bounds(), c.Base, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), c.Annot, image.Point{}, draw.Over)
	return out
}

// Snapshot is a copy of an RGBA pixel buffer.
type Snapshot struct {
	Pix    []byte
	Width  int
	Height int
}

// SnapshotOf copies img into a Snapshot.
func SnapshotOf(img *image.RGBA) Snapshot {
	b := img.Bounds()
	s := Snapshot{Pix: make([]byte, b.Dx()*b.Dy()*4), Width: b.Dx(), Height: b.Dy()}
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(s.Pix[y*b.Dx()*4:(y+1)*b.Dx()*4], row[:b.Dx()*4])
	}
	return s
}

// Empty reports whether the snapshot holds no pixels.
func (s Snapshot) Empty() bool { return s.Width == 0 || s.Height == 0 }

// Image returns the snapshot as an image sharing its pixels.
func (s Snapshot) Image() *image.RGBA {
	return &image.RGBA{Pix: s.Pix, Stride: s.Width * 4, Rect: image.Rect(0, 0, s.Width, s.Height)}
}

// Equal reports whether two snapshots are byte-identical.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Width == o.Width && s.Height == o.Height && bytes.Equal(s.Pix, o.Pix)
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Pix: append([]byte(nil), s.Pix...), Width: s.Width, Height: s.Height}
}

// RevertUnchanged restores before wherever dst still equals after. Pixels
// painted since after was taken are kept. All three must share one size.
func RevertUnchanged(dst *image.RGBA, before, after Snapshot) bool {
	b := dst.Bounds()
	if before.Width != b.Dx() || before.Height != b.Dy() || after.Width != before.Width || after.Height != before.Height {
		return false
	}
	for i := 0; i < len(after.Pix); i += 4 {
		if dst.Pix[i] == after.Pix[i] && dst.Pix[i+1] == after.Pix[i+1] &&
			dst.Pix[i+2] == after.Pix[i+2] && dst.Pix[i+3] == after.Pix[i+3] {
			copy(dst.Pix[i:i+4], before.Pix[i:i+4])
		}
	}
	return true
}

// Resample returns s scaled to w×h.
func Resample(s Snapshot, w, h int) Snapshot {
	if s.Width == w && s.Height == h {
		return s.Clone()
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if !s.Empty() {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), s.Image(), image.Rect(0, 0, s.Width, s.Height), xdraw.Src, nil)
	}
	return SnapshotOf(dst)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
