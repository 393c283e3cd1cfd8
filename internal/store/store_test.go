package store

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"inkpdf/internal/pages"
	"inkpdf/internal/raster"
	"inkpdf/internal/stroke"
)

func sample(t *testing.T) *Annotations {
	t.Helper()
	c := raster.New(8, 6, 1.5)
	c.Annot.SetRGBA(2, 3, color.RGBA{255, 0, 0, 255})
	strokes := stroke.Export{Strokes: []stroke.Record{{
		Samples: []stroke.Sample{{X: 1, Y: 2, Pressure: 0.5}},
		Style:   stroke.DefaultStyle(),
	}}}
	pi, err := NewPageImage(c.Annot, c.Scale, &strokes)
	if err != nil {
		t.Fatal(err)
	}
	s := pages.New(3)
	s.Delete(2)
	return &Annotations{
		CanvasData:    map[string]PageImage{"1": pi},
		PageStructure: s.Record(),
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 1, color.RGBA{10, 20, 30, 255})
	url, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePNG(url)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"", "data:image/png,abc", "data:image/png;base64,!!!", "data:image/png;base64,aGVsbG8="} {
		if _, err := DecodePNG(bad); err == nil {
			t.Errorf("DecodePNG(%q) accepted", bad)
		}
	}
}

func TestHTTPStore(t *testing.T) {
	saved := map[string]json.RawMessage{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/saveAnnotations", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			FileID      string          `json:"file_id"`
			Annotations json.RawMessage `json:"annotations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		saved[req.FileID] = req.Annotations
		w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("/api/loadAnnotations/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/loadAnnotations/"):]
		raw, ok := saved[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"annotations":`))
		w.Write(raw)
		w.Write([]byte(`}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	st := NewHTTP(srv.URL + "/api/")
	if _, err := st.Load(ctx, "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before save: err = %v, want ErrNotFound", err)
	}
	want := sample(t)
	if err := st.Save(ctx, "doc-1", want); err != nil {
		t.Fatal(err)
	}
	got, err := st.Load(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPStoreReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	st := NewHTTP(srv.URL)
	if err := st.Save(context.Background(), "x", Empty()); err == nil {
		t.Error("Save ignored a 500")
	}
	if _, err := st.Load(context.Background(), "x"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load err = %v, want server error", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	st := NewFile(t.TempDir())
	if _, err := st.Load(ctx, "a/b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	want := sample(t)
	if err := st.Save(ctx, "a/b", want); err != nil {
		t.Fatal(err)
	}
	got, err := st.Load(ctx, "a/b")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
	img, err := DecodePNG(got.CanvasData["1"].ImageData)
	if err != nil {
		t.Fatal(err)
	}
	if img.RGBAAt(2, 3) != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel = %v", img.RGBAAt(2, 3))
	}
}
