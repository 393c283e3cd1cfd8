// Package pdfdoc is the rendering side of a PDF document: page count, page
// geometry and rasterization of one page at a given scale.
package pdfdoc

import (
	"context"
	"errors"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ErrPageRange is returned for page numbers outside 1..NumPages.
var ErrPageRange = errors.New("page out of range")

// Letter is the fallback page size in points.
var Letter = Size{Width: 612, Height: 792}

// Size is a page size in PDF points.
type Size struct {
	Width  float64
	Height float64
}

// Viewport is a page laid out at a scale and rotation, in pixels.
type Viewport struct {
	Width    float64
	Height   float64
	Scale    float64
	Rotation int
}

// Pixels returns the integer raster size of the viewport.
func (v Viewport) Pixels() (int, int) {
	w, h := int(v.Width+0.5), int(v.Height+0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// NewViewport lays out a page of the given size. Rotation is normalized to
// a multiple of 90 in [0, 360).
func NewViewport(size Size, scale float64, rotation int) Viewport {
	if scale <= 0 {
		scale = 1
	}
	rotation = ((rotation/90)%4 + 4) % 4 * 90
	w, h := size.Width*scale, size.Height*scale
	if rotation == 90 || rotation == 270 {
		w, h = h, w
	}
	return Viewport{Width: w, Height: h, Scale: scale, Rotation: rotation}
}

// Page is one renderable page.
type Page interface {
	Number() int
	Size() Size
	Viewport(scale float64, rotation int) Viewport
	Render(ctx context.Context, dst *image.RGBA, vp Viewport) error
}

// Document is an open PDF.
type Document interface {
	NumPages() int
	Page(n int) (Page, error)
	Close() error
}

// fit draws src into dst, rotated and resampled to dst's size.
func fit(dst *image.RGBA, src image.Image, rotation int) {
	src = rotate(src, rotation)
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}

// rotate turns src clockwise by a multiple of 90 degrees.
func rotate(src image.Image, rotation int) image.Image {
	if rotation == 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var out *image.RGBA
	if rotation == 180 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.At(b.Min.X+x, b.Min.Y+y)
			switch rotation {
			case 90:
				out.Set(h-1-y, x, c)
			case 180:
				out.Set(w-1-x, h-1-y, c)
			case 270:
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}
