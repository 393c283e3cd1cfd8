package viewer

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"inkpdf/internal/graph"
	"inkpdf/internal/history"
	"inkpdf/internal/logx"
	"inkpdf/internal/pages"
	"inkpdf/internal/pdfdoc"
	"inkpdf/internal/raster"
	"inkpdf/internal/store"
	"inkpdf/internal/stroke"
)

type thumbnail struct {
	img  *image.RGBA
	maxW int
}

// PageBox places one page in the continuous layout, in pixels.
type PageBox struct {
	Display int
	Y       float64
	Width   float64
	Height  float64
}

// sizeOf is the page size in points of an identifier. Inserted pages take
// the size of the document's first page.
func (v *Viewer) sizeOf(id pages.Identifier) pdfdoc.Size {
	if id.IsOriginal() && v.doc != nil {
		if p, err := v.doc.Page(id.PageNumber); err == nil {
			return p.Size()
		}
	}
	return v.pageSize
}

// Page returns the live canvas of display page d, rendering it first when
// needed.
func (v *Viewer) Page(d int) (*raster.Canvas, error) {
	pv, err := v.view(d)
	if err != nil {
		return nil, err
	}
	return pv.canvas, nil
}

// Composite returns display page d with its annotations.
func (v *Viewer) Composite(d int) (*image.RGBA, error) {
	pv, err := v.view(d)
	if err != nil {
		return nil, err
	}
	return pv.canvas.Composite(), nil
}

func (v *Viewer) view(d int) (*pageView, error) {
	if !v.Loaded() {
		return nil, ErrNotOpen
	}
	id, ok := v.structure.Identifier(d)
	if !ok {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoPage, d, v.structure.TotalPages())
	}
	key := id.Key()
	if pv, ok := v.views[key]; ok && pv.canvas.Alive() && pv.canvas.Scale == v.scale {
		return pv, nil
	}
	if old, ok := v.views[key]; ok {
		v.dropView(key, old)
	}
	pv, err := v.build(id, d)
	if err != nil {
		return nil, err
	}
	v.views[key] = pv
	v.emit(Event{Name: EventPageRendered, Page: d, Data: key})
	return pv, nil
}

func (v *Viewer) build(id pages.Identifier, d int) (*pageView, error) {
	key := id.Key()
	vp := pdfdoc.NewViewport(v.sizeOf(id), v.scale, 0)
	w, h := vp.Pixels()
	c := raster.New(w, h, v.scale)
	switch {
	case id.IsOriginal():
		page, err := v.doc.Page(id.PageNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", id.PageNumber, err)
		}
		vp = page.Viewport(v.scale, 0)
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		if err := page.Render(context.Background(), img, vp); err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", id.PageNumber, err)
		}
		c.SetBase(img)
	case id.IsGraph:
		cfg := graph.DefaultConfig()
		if id.Graph != nil {
			cfg = *id.Graph
		}
		for _, err := range graph.Render(gg.NewContextForRGBA(c.Base), cfg) {
			v.warn(d, err)
		}
	}

	e := stroke.NewEngine(v.strokeStyle())
	if top, ok := v.history.Top(key); ok {
		history.Restore(c, e, top)
	} else {
		if pi, ok := v.pending[key]; ok {
			delete(v.pending, key)
			if err := restorePersisted(c, e, pi); err != nil {
				v.log.Warn("failed to restore saved annotations", logx.String("page", key), logx.Err(err))
			}
		}
		v.history.Init(key, c, e)
	}
	if g, ok := v.grids[key]; ok {
		g.resize(w, h)
	}
	return &pageView{id: id, canvas: c, engine: e, vp: vp}, nil
}

// restorePersisted applies a saved page image to a fresh canvas, rescaling
// it when it was saved at another zoom.
func restorePersisted(c *raster.Canvas, e *stroke.Engine, pi store.PageImage) error {
	img, err := store.DecodePNG(pi.ImageData)
	if err != nil {
		return err
	}
	ent := history.Entry{
		Raster: raster.SnapshotOf(img),
		Vector: pi.Strokes,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Scale:  pi.Scale,
	}
	if ent.Scale <= 0 {
		ent.Scale = c.Scale * float64(ent.Width) / float64(c.Width())
	}
	history.Restore(c, e, ent)
	return nil
}

func (v *Viewer) dropView(key string, pv *pageView) {
	if v.toolKey == key {
		v.dropTool()
	}
	pv.canvas.Dispose()
	delete(v.views, key)
}

func (v *Viewer) dropAllViews() {
	v.dropTool()
	for key, pv := range v.views {
		pv.canvas.Dispose()
		delete(v.views, key)
	}
}

// SetScale changes the zoom, clamped to the configured range. Every page is
// re-rendered at the new scale from its live history entry.
func (v *Viewer) SetScale(s float64) error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	s = clampF(s, v.cfg.MinZoom, v.cfg.MaxZoom)
	if math.Abs(s-v.scale) < 1e-9 {
		return nil
	}
	v.commitText()
	v.dropAllViews()
	v.scale = s
	v.log.Debug("zoom", logx.Float("scale", s))
	_, err := v.view(v.current)
	return err
}

// ZoomIn steps the zoom up.
func (v *Viewer) ZoomIn() error { return v.SetScale(v.scale + v.cfg.ZoomStep) }

// ZoomOut steps the zoom down.
func (v *Viewer) ZoomOut() error { return v.SetScale(v.scale - v.cfg.ZoomStep) }

// SetPage focuses display page d.
func (v *Viewer) SetPage(d int) error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	if d < 1 || d > v.structure.TotalPages() {
		return fmt.Errorf("%w: %d of %d", ErrNoPage, d, v.structure.TotalPages())
	}
	if d == v.current {
		return nil
	}
	v.commitText()
	v.cancelTool()
	v.current = d
	_, err := v.view(d)
	return err
}

// NextPage moves focus forward one page.
func (v *Viewer) NextPage() error { return v.SetPage(v.current + 1) }

// PrevPage moves focus back one page.
func (v *Viewer) PrevPage() error { return v.SetPage(v.current - 1) }

// Layout returns every page box of the continuous layout at the current
// scale.
func (v *Viewer) Layout() []PageBox {
	if !v.Loaded() {
		return nil
	}
	seq := v.structure.Sequence()
	out := make([]PageBox, 0, len(seq))
	y := 0.0
	for i, id := range seq {
		vp := pdfdoc.NewViewport(v.sizeOf(id), v.scale, 0)
		out = append(out, PageBox{Display: i + 1, Y: y, Width: vp.Width, Height: vp.Height})
		y += vp.Height + v.cfg.PageSpacing
	}
	return out
}

// PageAt maps a y offset of the continuous layout to a display page and the
// offset within it. Offsets in the gap after a page belong to that page.
func (v *Viewer) PageAt(y float64) (int, float64) {
	boxes := v.Layout()
	if len(boxes) == 0 {
		return 0, 0
	}
	for _, b := range boxes {
		if y < b.Y+b.Height+v.cfg.PageSpacing {
			if y < b.Y {
				y = b.Y
			}
			return b.Display, y - b.Y
		}
	}
	last := boxes[len(boxes)-1]
	return last.Display, last.Height
}

// Thumbnail returns a copy of display page d at most maxW pixels wide.
// Thumbnails are cached until the page changes.
func (v *Viewer) Thumbnail(d, maxW int) (*image.RGBA, error) {
	if maxW < 1 {
		maxW = 1
	}
	if t, ok := v.thumbs[d]; ok && t.maxW == maxW {
		return t.img, nil
	}
	img, err := v.Composite(d)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxW {
		h = int(math.Max(1, math.Round(float64(h)*float64(maxW)/float64(w))))
		w = maxW
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	v.thumbs[d] = &thumbnail{img: out, maxW: maxW}
	return out, nil
}

func (v *Viewer) invalidateThumb(d int) {
	delete(v.thumbs, d)
}

func (v *Viewer) warn(d int, err error) {
	v.log.Warn("page warning", logx.Int("page", d), logx.Err(err))
	v.emit(Event{Name: EventWarning, Page: d, Data: err})
}
