package main

import "inkpdf/internal/viewer"

func (m *model) handlePan(key string, speed int) {
	switch key {
	case "h", "left", "H", "shift+left":
		m.panX -= speed
	case "l", "right", "L", "shift+right":
		m.panX += speed
	case "k", "up", "K", "shift+up":
		m.panY -= speed
	case "j", "down", "J", "shift+down":
		m.panY += speed
	}
	m.clampPan()
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

// clampPan keeps the pan inside the laid-out document.
func (m *model) clampPan() {
	if m.panX < 0 {
		m.panX = 0
	}
	if m.panY < 0 {
		m.panY = 0
	}
	ppc := m.pixelsPerCell()
	if ppc <= 0 {
		return
	}
	var w, h float64
	if m.viewer.ViewMode() == viewer.ViewSingle {
		if pg, err := m.viewer.Page(m.viewer.CurrentPage()); err == nil {
			w, h = float64(pg.Width()), float64(pg.Height())
		}
	} else if boxes := m.viewer.Layout(); len(boxes) > 0 {
		last := boxes[len(boxes)-1]
		w, h = last.Width, last.Y+last.Height
	}
	maxX := int(w/ppc) - m.width
	maxY := int(h/(2*ppc)) - m.pageRows()
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if m.panX > maxX {
		m.panX = maxX
	}
	if m.panY > maxY {
		m.panY = maxY
	}
}

func (m *model) zoom(step func() error) {
	if err := step(); err != nil {
		m.errorMessage = err.Error()
	}
	m.clampPan()
}

// gotoPage changes page and, in continuous view, scrolls it into view.
func (m *model) gotoPage(step func() error) {
	if err := step(); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.panY = 0
	if m.viewer.ViewMode() == viewer.ViewContinuous {
		for _, b := range m.viewer.Layout() {
			if b.Display == m.viewer.CurrentPage() {
				m.panY = int(b.Y / (2 * m.pixelsPerCell()))
			}
		}
	}
	m.clampPan()
}

func (m *model) toggleViewMode() {
	if m.viewer.ViewMode() == viewer.ViewSingle {
		m.viewer.SetViewMode(viewer.ViewContinuous)
	} else {
		m.viewer.SetViewMode(viewer.ViewSingle)
	}
	m.gotoPage(func() error { return nil })
}
