package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"inkpdf/internal/export"
)

func (m *model) exportBase() string {
	base := filepath.Base(m.filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// exportPNG writes the current page with its annotations.
func (m *model) exportPNG() (string, error) {
	d := m.viewer.CurrentPage()
	img, err := m.viewer.Composite(d)
	if err != nil {
		return "", err
	}
	path := m.config.GetSavePath(fmt.Sprintf("%s-page%d.png", m.exportBase(), d))
	if err := gg.SavePNG(path, img); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// exportPDF writes every page, annotations flattened, to a new PDF.
func (m *model) exportPDF() (string, error) {
	path := m.config.GetSavePath(m.exportBase() + ".annotated.pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := m.viewer.ExportPDF(context.Background(), export.NewPDF(), f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	return path, f.Close()
}
