package viewer

import (
	"strings"

	"inkpdf/internal/geom"
	"inkpdf/internal/logx"
	"inkpdf/internal/raster"
)

// TextInput is a text annotation being typed. It is drawn onto the page
// only when committed.
type TextInput struct {
	Page  int
	At    geom.Point
	Lines []string
}

// Text returns the text being typed, or nil.
func (v *Viewer) Text() *TextInput {
	if v.text == nil {
		return nil
	}
	t := *v.text
	t.Lines = append([]string(nil), v.text.Lines...)
	return &t
}

func (v *Viewer) beginText(at geom.Point) error {
	v.commitText()
	if _, err := v.view(v.current); err != nil {
		return err
	}
	v.text = &TextInput{Page: v.current, At: at, Lines: []string{""}}
	return nil
}

// TextInsert types s at the end of the text. Newlines in s start new lines.
func (v *Viewer) TextInsert(s string) {
	if v.text == nil {
		return
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	parts := strings.Split(s, "\n")
	last := len(v.text.Lines) - 1
	v.text.Lines[last] += parts[0]
	v.text.Lines = append(v.text.Lines, parts[1:]...)
}

// TextNewline starts a new line.
func (v *Viewer) TextNewline() {
	if v.text != nil {
		v.text.Lines = append(v.text.Lines, "")
	}
}

// TextBackspace removes the last rune, joining lines when the current one
// is empty.
func (v *Viewer) TextBackspace() {
	if v.text == nil {
		return
	}
	last := len(v.text.Lines) - 1
	line := []rune(v.text.Lines[last])
	switch {
	case len(line) > 0:
		v.text.Lines[last] = string(line[:len(line)-1])
	case last > 0:
		v.text.Lines = v.text.Lines[:last]
	}
}

// TextCancel discards the text.
func (v *Viewer) TextCancel() { v.text = nil }

// TextCommit draws the text onto its page and records it in history.
func (v *Viewer) TextCommit() { v.commitText() }

func (v *Viewer) commitText() {
	t := v.text
	v.text = nil
	if t == nil || strings.TrimSpace(strings.Join(t.Lines, "")) == "" {
		return
	}
	pv, err := v.view(t.Page)
	if err != nil {
		v.log.Warn("text page is gone", logx.Int("page", t.Page))
		return
	}
	dc := pv.canvas.Context()
	if dc == nil {
		return
	}
	if err := raster.Text(dc, t.Lines, t.At, v.cfg.TextSize*v.scale, v.color); err != nil {
		v.log.Warn("failed to draw text", logx.Err(err))
		return
	}
	v.commit(pv.id.Key())
}
