package viewer

import (
	"context"
	"fmt"
	"io"

	"inkpdf/internal/export"
	"inkpdf/internal/logx"
)

// ExportPDF writes every display page, with its annotations, to w through
// b. Pages keep their size in points.
func (v *Viewer) ExportPDF(ctx context.Context, b export.Builder, w io.Writer) error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	v.commitText()
	v.cancelTool()
	for i, id := range v.structure.Sequence() {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := v.Composite(i + 1)
		if err != nil {
			return fmt.Errorf("failed to export page %d: %w", i+1, err)
		}
		size := v.sizeOf(id)
		b.AddPage(size.Width, size.Height)
		if err := b.AddImage(img, 0, 0, size.Width, size.Height); err != nil {
			return fmt.Errorf("failed to export page %d: %w", i+1, err)
		}
	}
	if err := b.Output(ctx, w); err != nil {
		return err
	}
	v.log.Info("exported pdf", logx.Int("pages", b.PageCount()))
	return nil
}
