package main

import (
	"context"
	"math"
	"testing"

	"inkpdf/internal/logx"
	"inkpdf/internal/pdfdoc"
	"inkpdf/internal/viewer"
)

func testModel(t *testing.T, pages int, vm viewer.ViewMode) model {
	t.Helper()
	cfg := viewer.DefaultConfig()
	cfg.ViewMode = vm
	v := viewer.New(cfg)
	if err := v.Open(context.Background(), func(context.Context) (pdfdoc.Document, error) {
		return pdfdoc.NewMemory(pages), nil
	}); err != nil {
		t.Fatal(err)
	}
	m := newModel(v, defaultConfig(), logx.Nop(), "notes.pdf")
	m.width, m.height = 100, 41
	return m
}

func TestCellToPageSingle(t *testing.T) {
	m := testModel(t, 2, viewer.ViewSingle)
	d, p, ok := m.cellToPage(cell{X: 10, Y: 5})
	if !ok || d != 1 {
		t.Fatalf("page %d ok %v", d, ok)
	}
	ppc := pointsPerCell
	if math.Abs(p.X-10.5*ppc) > 1e-9 || math.Abs(p.Y-11*ppc) > 1e-9 {
		t.Errorf("point %v", p)
	}
	if _, _, ok := m.cellToPage(cell{X: 200, Y: 5}); ok {
		t.Error("cell right of the page mapped onto it")
	}
}

func TestCellToPageContinuous(t *testing.T) {
	m := testModel(t, 2, viewer.ViewContinuous)
	// 792pt page plus 20pt gap puts page 2 at 812pt, about row 66.3
	m.panY = 60
	d, p, ok := m.cellToPage(cell{X: 0, Y: 10})
	if !ok || d != 2 {
		t.Fatalf("page %d ok %v", d, ok)
	}
	if want := 141*pointsPerCell - 812; math.Abs(p.Y-want) > 1e-9 {
		t.Errorf("y = %v, want %v", p.Y, want)
	}
}

func TestRenderPagesFillsTheScreen(t *testing.T) {
	m := testModel(t, 1, viewer.ViewSingle)
	lines := m.renderPages(m.width, m.pageRows())
	if len(lines) != 40 {
		t.Fatalf("lines = %d", len(lines))
	}
	for i, l := range lines {
		if l == "" {
			t.Fatalf("line %d empty", i)
		}
	}
}
