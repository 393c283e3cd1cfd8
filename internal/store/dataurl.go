package store

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"inkpdf/internal/stroke"
)

const pngPrefix = "data:image/png;base64,"

// EncodePNG renders img as a PNG data URL.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodePNG parses a data URL produced by EncodePNG. Any base64 image data
// URL that image/png can read is accepted.
func DecodePNG(url string) (*image.RGBA, error) {
	header, payload, ok := strings.Cut(url, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("not a base64 data url")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

// NewPageImage builds the saved form of a page's annotation layer drawn at
// scale. strokes may be nil.
func NewPageImage(img image.Image, scale float64, strokes *stroke.Export) (PageImage, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return PageImage{}, err
	}
	b := img.Bounds()
	pi := PageImage{ImageData: data, Width: b.Dx(), Height: b.Dy(), Scale: scale}
	if strokes != nil && len(strokes.Strokes) > 0 {
		cp := strokes.Clone()
		pi.Strokes = &cp
	}
	return pi, nil
}
