// Package export writes annotated pages out as a PDF of page images.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/wudi/pdfkit/builder"
	"github.com/wudi/pdfkit/ir/semantic"
	"github.com/wudi/pdfkit/writer"
)

// ErrNoPages is returned by Output when every page was deleted.
var ErrNoPages = errors.New("document has no pages")

// Builder assembles an output document page by page. Coordinates are in
// points with the origin at the top-left corner of the page.
type Builder interface {
	AddPage(width, height float64)
	AddImage(img image.Image, x, y, width, height float64) error
	DeletePage(n int) error
	PageCount() int
	Output(ctx context.Context, w io.Writer) error
}

type placedImage struct {
	img        *semantic.Image
	x, y, w, h float64
}

type page struct {
	width, height float64
	images        []placedImage
}

// PDF builds its output with pdfkit.
type PDF struct {
	pages []*page
}

// NewPDF returns an empty document.
func NewPDF() *PDF { return &PDF{} }

func (p *PDF) AddPage(width, height float64) {
	p.pages = append(p.pages, &page{width: width, height: height})
}

// AddImage places img on the last page, flattened onto white.
func (p *PDF) AddImage(img image.Image, x, y, width, height float64) error {
	if len(p.pages) == 0 {
		return fmt.Errorf("add image: %w", ErrNoPages)
	}
	cur := p.pages[len(p.pages)-1]
	cur.images = append(cur.images, placedImage{img: RGBImage(img), x: x, y: y, w: width, h: height})
	return nil
}

// DeletePage removes page n (1-based).
func (p *PDF) DeletePage(n int) error {
	if n < 1 || n > len(p.pages) {
		return fmt.Errorf("delete page %d of %d: out of range", n, len(p.pages))
	}
	p.pages = append(p.pages[:n-1], p.pages[n:]...)
	return nil
}

func (p *PDF) PageCount() int { return len(p.pages) }

// Output writes the document.
func (p *PDF) Output(ctx context.Context, w io.Writer) error {
	if len(p.pages) == 0 {
		return ErrNoPages
	}
	b := builder.NewBuilder()
	for _, pg := range p.pages {
		pb := b.NewPage(pg.width, pg.height)
		for _, im := range pg.images {
			// PDF space grows upwards from the bottom-left corner
			pb.DrawImage(im.img, im.x, pg.height-im.y-im.h, im.w, im.h, builder.ImageOptions{Interpolate: true})
		}
		pb.Finish()
	}
	doc, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to build pdf: %w", err)
	}
	wr := (&writer.WriterBuilder{}).Build()
	cfg := writer.Config{Version: writer.PDF17, Deterministic: true, Compression: 6}
	if err := wr.Write(ctx, doc, w, cfg); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// Flatten composites img over opaque white.
func Flatten(img image.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

// RGBImage converts img into an 8-bit DeviceRGB image XObject.
func RGBImage(img image.Image) *semantic.Image {
	flat := Flatten(img)
	w, h := flat.Bounds().Dx(), flat.Bounds().Dy()
	data := make([]byte, 0, w*h*3)
	for i := 0; i < len(flat.Pix); i += 4 {
		data = append(data, flat.Pix[i], flat.Pix[i+1], flat.Pix[i+2])
	}
	return &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       semantic.DeviceColorSpace{Name: "DeviceRGB"},
		BitsPerComponent: 8,
		Data:             data,
	}
}
