package main

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"inkpdf/internal/geom"
	"inkpdf/internal/raster"
	"inkpdf/internal/viewer"
)

var backdrop = color.RGBA{0x26, 0x32, 0x38, 0xff}

// pageLayer is one page placed in the terminal's pixel space.
type pageLayer struct {
	display int
	top     float64
	img     *image.RGBA
}

// pixelsPerCell is the number of page pixels covered by one terminal column
// (and by one half-block row) at the current zoom.
func (m *model) pixelsPerCell() float64 {
	return pointsPerCell * m.viewer.Scale()
}

// layers returns the pages to draw. In single view only the current page is
// shown; in continuous view every page is stacked with the configured gap.
func (m *model) layers() []pageLayer {
	v := m.viewer
	if v.ViewMode() == viewer.ViewSingle {
		img, err := v.Composite(v.CurrentPage())
		if err != nil {
			return nil
		}
		return []pageLayer{{display: v.CurrentPage(), img: img}}
	}
	ppc := m.pixelsPerCell()
	viewTop := float64(m.panY*2) * ppc
	viewBottom := viewTop + float64(m.pageRows()*2)*ppc
	var out []pageLayer
	for _, b := range v.Layout() {
		if b.Y+b.Height < viewTop || b.Y > viewBottom {
			continue
		}
		img, err := v.Composite(b.Display)
		if err != nil {
			continue
		}
		out = append(out, pageLayer{display: b.Display, top: b.Y, img: img})
	}
	return out
}

func (m *model) pageRows() int {
	rows := m.height - 1
	if rows < 1 {
		rows = 1
	}
	return rows
}

// sample returns the pixel under terminal column col and half-block row
// half.
func sample(layers []pageLayer, col, half, panX, panY int, ppc float64) color.RGBA {
	x := (float64(col+panX) + 0.5) * ppc
	y := (float64(half+panY*2) + 0.5) * ppc
	for _, l := range layers {
		b := l.img.Bounds()
		py := y - l.top
		if x < 0 || py < 0 || int(x) >= b.Dx() || int(py) >= b.Dy() {
			continue
		}
		return l.img.RGBAAt(int(x), int(py))
	}
	return backdrop
}

// renderPages draws the visible part of the document with half-block
// characters, two pixels per cell. Runs of equal cells share one style.
func (m *model) renderPages(width, height int) []string {
	layers := m.layers()
	ppc := m.pixelsPerCell()
	lines := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		runStart := 0
		var runTop, runBottom color.RGBA
		flush := func(end int) {
			if end <= runStart {
				return
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(raster.HexColor(runTop))).
				Background(lipgloss.Color(raster.HexColor(runBottom)))
			line.WriteString(style.Render(strings.Repeat("▀", end-runStart)))
		}
		for col := 0; col < width; col++ {
			top := sample(layers, col, row*2, m.panX, m.panY, ppc)
			bottom := sample(layers, col, row*2+1, m.panX, m.panY, ppc)
			if col == 0 {
				runTop, runBottom = top, bottom
				continue
			}
			if top != runTop || bottom != runBottom {
				flush(col)
				runStart = col
				runTop, runBottom = top, bottom
			}
		}
		flush(width)
		lines[row] = line.String()
	}
	return lines
}

// cellToPage maps a terminal cell to a display page and a point in that
// page's pixels. ok is false when the cell is off every page.
func (m *model) cellToPage(c cell) (int, geom.Point, bool) {
	v := m.viewer
	ppc := m.pixelsPerCell()
	x := (float64(c.X+m.panX) + 0.5) * ppc
	y := (float64(c.Y+m.panY)*2 + 1) * ppc
	if v.ViewMode() == viewer.ViewSingle {
		pg, err := v.Page(v.CurrentPage())
		if err != nil {
			return 0, geom.Point{}, false
		}
		p := geom.Pt(x, y)
		return v.CurrentPage(), p, x < float64(pg.Width()) && y < float64(pg.Height())
	}
	d, local := v.PageAt(y)
	if d == 0 {
		return 0, geom.Point{}, false
	}
	pg, err := v.Page(d)
	if err != nil {
		return 0, geom.Point{}, false
	}
	return d, geom.Pt(x, local), x < float64(pg.Width()) && local < float64(pg.Height())
}
