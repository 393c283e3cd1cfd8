package pdfdoc

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewViewport(t *testing.T) {
	tests := []struct {
		rot          int
		wantW, wantH float64
		wantRot      int
	}{
		{0, 1224, 1584, 0},
		{90, 1584, 1224, 90},
		{-90, 1584, 1224, 270},
		{450, 1584, 1224, 90},
		{180, 1224, 1584, 180},
	}
	for _, tc := range tests {
		vp := NewViewport(Letter, 2, tc.rot)
		if vp.Width != tc.wantW || vp.Height != tc.wantH || vp.Rotation != tc.wantRot {
			t.Errorf("rotation %d: got %+v", tc.rot, vp)
		}
	}
	if w, h := NewViewport(Size{0.1, 0.1}, 1, 0).Pixels(); w != 1 || h != 1 {
		t.Errorf("tiny viewport pixels = %d×%d", w, h)
	}
}

func TestRotateClockwise(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	red := color.RGBA{255, 0, 0, 255}
	src.SetRGBA(0, 0, red) // top-left
	out := rotate(src, 90).(*image.RGBA)
	if out.Bounds().Dx() != 2 || out.Bounds().Dy() != 3 {
		t.Fatalf("rotated bounds = %v", out.Bounds())
	}
	if out.RGBAAt(1, 0) != red {
		t.Errorf("top-left did not move to top-right")
	}
	out = rotate(src, 270).(*image.RGBA)
	if out.RGBAAt(0, 2) != red {
		t.Errorf("top-left did not move to bottom-left")
	}
}

func TestMemoryDocument(t *testing.T) {
	doc := NewMemory(2)
	if _, err := doc.Page(3); !errors.Is(err, ErrPageRange) {
		t.Fatalf("Page(3) err = %v", err)
	}
	p, err := doc.Page(2)
	if err != nil {
		t.Fatal(err)
	}
	vp := p.Viewport(0.5, 0)
	w, h := vp.Pixels()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := p.Render(context.Background(), dst, vp); err != nil {
		t.Fatal(err)
	}
	if dst.RGBAAt(w/2, h/2) != doc.Fill || doc.Renders[2] != 1 {
		t.Errorf("page not rendered")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Render(ctx, dst, vp); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled render err = %v", err)
	}
}
