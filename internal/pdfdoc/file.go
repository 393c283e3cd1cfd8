package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/novvoo/go-pdf/pkg/gopdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// File is a PDF on disk rendered through go-pdf.
type File struct {
	path   string
	mu     sync.Mutex
	reader *gopdf.PDFReader
	sizes  []Size
}

// Open parses the file at path and reads every page size. Files pdfcpu
// cannot read are rejected up front.
func Open(ctx context.Context, path string) (*File, error) {
	pctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pctx.PageCount < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	r := gopdf.NewPDFReader(path)
	n, err := r.GetPageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	f := &File{path: path, reader: r, sizes: make([]Size, n)}
	for i := 1; i <= n; i++ {
		info, err := r.GetPageInfo(i)
		if err != nil {
			info = gopdf.PageInfo{Width: Letter.Width, Height: Letter.Height}
		}
		f.sizes[i-1] = Size{Width: info.Width, Height: info.Height}
	}
	return f, nil
}

func (f *File) NumPages() int { return len(f.sizes) }

func (f *File) Page(n int) (Page, error) {
	if n < 1 || n > len(f.sizes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, n, len(f.sizes))
	}
	return &filePage{f: f, n: n}, nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reader.Close()
}

type filePage struct {
	f *File
	n int
}

func (p *filePage) Number() int { return p.n }

func (p *filePage) Size() Size { return p.f.sizes[p.n-1] }

func (p *filePage) Viewport(scale float64, rotation int) Viewport {
	return NewViewport(p.Size(), scale, rotation)
}

// Render rasterizes the page at the viewport's scale into dst.
func (p *filePage) Render(ctx context.Context, dst *image.RGBA, vp Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.f.mu.Lock()
	img, err := p.f.reader.RenderPageToImage(p.n, 72*vp.Scale)
	p.f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to render page %d: %w", p.n, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	fit(dst, img, vp.Rotation)
	return nil
}
