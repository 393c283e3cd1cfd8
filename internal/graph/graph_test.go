package graph

import (
	"image"
	"strings"
	"testing"

	"github.com/fogleman/gg"
)

func TestPlaneMapsCorners(t *testing.T) {
	p := NewPlane(DefaultConfig(), 200, 100)
	tl := p.ToPixel(-10, 10)
	br := p.ToPixel(10, -10)
	m := 100 * 0.05
	if tl.X != m || tl.Y != m {
		t.Errorf("top-left = %v, want (%v,%v)", tl, m, m)
	}
	if br.X != 200-m || br.Y != 100-m {
		t.Errorf("bottom-right = %v, want (%v,%v)", br, 200-m, 100-m)
	}
}

func TestRenderReportsBadFunctionOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Functions = []Function{
		{Expr: "x^2", Color: "#ff0000"},
		{Expr: "bogus(x)"},
		{Expr: "1/x"},
	}
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	warnings := Render(gg.NewContextForRGBA(img), cfg)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !strings.Contains(warnings[0].Error(), "bogus") {
		t.Errorf("warning %q does not name the failing function", warnings[0])
	}

	// the parabola vertex sits at the origin
	p := NewPlane(cfg, 300, 300)
	o := p.ToPixel(0, 0)
	found := false
	for dy := -2; dy <= 2 && !found; dy++ {
		c := img.RGBAAt(int(o.X), int(o.Y)+dy)
		if c.R > 150 && c.G < 120 && c.B < 120 {
			found = true
		}
	}
	if !found {
		t.Error("parabola not drawn near origin")
	}
}

func TestRenderRejectsEmptyRange(t *testing.T) {
	cfg := Config{XMin: 1, XMax: 1, YMin: 0, YMax: 1}
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if w := Render(gg.NewContextForRGBA(img), cfg); len(w) != 1 {
		t.Fatalf("warnings = %v, want one", w)
	}
}

func TestTicks(t *testing.T) {
	got := ticks(-10, 10)
	if len(got) != 11 || got[0] != -10 || got[10] != 10 {
		t.Errorf("ticks(-10,10) = %v", got)
	}
	if got := ticks(0, 1); len(got) != 11 {
		t.Errorf("ticks(0,1) = %v", got)
	}
}

func TestDrawGrid(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	DrawGrid(gg.NewContextForRGBA(img), 20, "#000000")
	if img.RGBAAt(20, 50).A == 0 {
		t.Error("grid line missing at x=20")
	}
	if img.RGBAAt(10, 10).A != 0 {
		t.Error("grid cell interior painted")
	}
}
