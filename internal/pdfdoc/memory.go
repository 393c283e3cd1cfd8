package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Memory is a document of plain coloured pages. It backs blank documents
// and tests.
type Memory struct {
	Sizes []Size
	Fill  color.RGBA
	// Renders counts Render calls per page.
	Renders map[int]int
}

// NewMemory returns n white Letter pages.
func NewMemory(n int) *Memory {
	m := &Memory{Fill: color.RGBA{255, 255, 255, 255}, Renders: map[int]int{}}
	for i := 0; i < n; i++ {
		m.Sizes = append(m.Sizes, Letter)
	}
	return m
}

func (m *Memory) NumPages() int { return len(m.Sizes) }

func (m *Memory) Page(n int) (Page, error) {
	if n < 1 || n > len(m.Sizes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, n, len(m.Sizes))
	}
	return &memPage{m: m, n: n}, nil
}

func (m *Memory) Close() error { return nil }

type memPage struct {
	m *Memory
	n int
}

func (p *memPage) Number() int { return p.n }

func (p *memPage) Size() Size { return p.m.Sizes[p.n-1] }

func (p *memPage) Viewport(scale float64, rotation int) Viewport {
	return NewViewport(p.Size(), scale, rotation)
}

func (p *memPage) Render(ctx context.Context, dst *image.RGBA, _ Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.m.Renders == nil {
		p.m.Renders = map[int]int{}
	}
	p.m.Renders[p.n]++
	draw.Draw(dst, dst.Bounds(), image.NewUniform(p.m.Fill), image.Point{}, draw.Src)
	return nil
}
