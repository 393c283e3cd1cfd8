// Package store persists page annotations, either through the annotation
// server or as JSON files on disk.
package store

import (
	"context"
	"errors"

	"inkpdf/internal/pages"
	"inkpdf/internal/stroke"
)

// ErrNotFound is returned by Load when nothing was saved for a file yet.
var ErrNotFound = errors.New("annotations not found")

// PageImage is the saved annotation layer of one page.
type PageImage struct {
	// ImageData is a "data:image/png;base64," URL of the annotation layer.
	ImageData string         `json:"imageData"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Scale     float64        `json:"scale,omitempty"`
	Strokes   *stroke.Export `json:"strokes,omitempty"`
}

// Annotations is everything saved for one document. CanvasData is keyed by
// display page number at the time of saving.
type Annotations struct {
	CanvasData    map[string]PageImage `json:"canvasData"`
	PageStructure pages.Record         `json:"pageStructure"`
}

// Store loads and saves annotations by file id.
type Store interface {
	Load(ctx context.Context, fileID string) (*Annotations, error)
	Save(ctx context.Context, fileID string, a *Annotations) error
}

// Empty returns annotations with no pages.
func Empty() *Annotations {
	return &Annotations{CanvasData: map[string]PageImage{}}
}
