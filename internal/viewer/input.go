package viewer

import (
	"fmt"
	"image/color"

	"inkpdf/internal/geom"
	"inkpdf/internal/logx"
	"inkpdf/internal/raster"
	"inkpdf/internal/stroke"
	"inkpdf/internal/tools"
)

// Tool is the selected tool.
func (v *Viewer) Tool() tools.Name { return v.toolName }

// ActiveTool returns the tool bound to the current page, if any.
func (v *Viewer) ActiveTool() tools.Tool { return v.tool }

// SetTool selects a tool. Text and every pointer tool are accepted subject
// to the mode.
func (v *Viewer) SetTool(name tools.Name) error {
	if v.cfg.Mode == ModePreview {
		return ErrReadOnly
	}
	if !v.cfg.Mode.Allows(name) {
		return fmt.Errorf("%w: %s", ErrToolNotAllowed, name)
	}
	if name == v.toolName {
		return nil
	}
	v.commitText()
	v.dropTool()
	v.toolName = name
	return nil
}

// Color is the drawing colour.
func (v *Viewer) Color() color.RGBA { return v.color }

// SetColor selects a drawing colour from the mode's palette.
func (v *Viewer) SetColor(hex string) error {
	if v.cfg.Mode == ModePreview {
		return ErrReadOnly
	}
	c, err := raster.ParseColor(hex)
	if err != nil {
		return err
	}
	ok := false
	for _, p := range v.cfg.Mode.Palette() {
		if pc, err := raster.ParseColor(p); err == nil && pc == c {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrColorNotAllowed, hex)
	}
	v.dropTool()
	v.color = c
	return nil
}

// Size is the pen width in pixels at scale 1.
func (v *Viewer) Size() float64 { return v.size }

// SetSize sets the pen width.
func (v *Viewer) SetSize(size float64) {
	if size <= 0 {
		return
	}
	v.dropTool()
	v.size = size
}

func (v *Viewer) strokeStyle() stroke.Style {
	st := stroke.DefaultStyle()
	st.Color = raster.HexColor(v.color)
	st.Size = v.size * 2 * v.scale
	return st
}

// bindTool returns the selected tool bound to the current page, creating
// it when the page or selection changed.
func (v *Viewer) bindTool(pv *pageView) (tools.Tool, error) {
	key := pv.id.Key()
	if v.tool != nil && v.toolKey == key && v.tool.Name() == v.toolName {
		return v.tool, nil
	}
	v.dropTool()
	pv.engine.SetStyle(v.strokeStyle())
	env := &tools.Env{
		Canvas:  pv.canvas,
		Engine:  pv.engine,
		Sched:   v.sched,
		Config:  v.cfg.Tools,
		Color:   v.color,
		Size:    v.size * v.scale,
		Log:     v.log.With(logx.String("tool", string(v.toolName))),
		Commit:  func() { v.commit(key) },
		Readout: v.onReadout,
		Flash: func(at geom.Point) {
			v.emit(Event{Name: EventToolFlash, Page: v.current, Data: at})
		},
	}
	t, err := tools.New(v.toolName, env)
	if err != nil {
		return nil, err
	}
	v.tool = t
	v.toolKey = key
	return t, nil
}

func (v *Viewer) onReadout(r tools.Readout) {
	v.readout = r
	v.emit(Event{Name: EventReadout, Page: v.current, Data: r})
}

// dropTool abandons any gesture and unbinds the tool.
func (v *Viewer) dropTool() {
	v.cancelTool()
	v.tool = nil
	v.toolKey = ""
}

func (v *Viewer) cancelTool() {
	if v.tool != nil && v.tool.Busy() {
		v.tool.Cancel()
	}
}

// commit records the live state of a page after a permanent change.
func (v *Viewer) commit(key string) {
	pv, ok := v.views[key]
	if !ok || !pv.canvas.Alive() {
		return
	}
	v.history.Save(key, pv.canvas, pv.engine)
	if d, ok := v.structure.DisplayOf(key); ok {
		v.invalidateThumb(d)
	}
	v.markDirty()
}

// PointerDown starts a gesture on the current page at p, in page pixels.
func (v *Viewer) PointerDown(p geom.Point, pressure float64) error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	if v.cfg.Mode == ModePreview {
		return ErrReadOnly
	}
	v.pointer = p
	if v.toolName == tools.Text {
		return v.beginText(p)
	}
	pv, err := v.view(v.current)
	if err != nil {
		return err
	}
	t, err := v.bindTool(pv)
	if err != nil {
		return err
	}
	pv.engine.SetStyle(v.strokeStyle())
	t.Down(p, pressure)
	return nil
}

// PointerMove feeds a pointer position to the gesture in progress.
func (v *Viewer) PointerMove(p geom.Point, pressure float64) {
	v.pointer = p
	if v.tool != nil && v.tool.Busy() {
		v.tool.Move(p, pressure)
	}
}

// PointerUp ends the gesture in progress.
func (v *Viewer) PointerUp(p geom.Point) {
	v.pointer = p
	if v.tool != nil && v.tool.Busy() {
		v.tool.Up(p)
	}
}

// PointerLeave handles the pointer leaving the page. Freehand gestures end
// where the pointer was last seen; measuring gestures are abandoned.
func (v *Viewer) PointerLeave() {
	if v.tool == nil || !v.tool.Busy() {
		return
	}
	switch v.tool.Name() {
	case tools.Pen, tools.Highlighter, tools.Eraser:
		v.tool.Up(v.pointer)
	default:
		v.tool.Cancel()
	}
}

// Undo steps the current page back. It reports whether anything changed.
func (v *Viewer) Undo() bool {
	return v.step(func(key string, pv *pageView) bool {
		return v.history.Undo(key, pv.canvas, pv.engine)
	})
}

// Redo re-applies the last undone change of the current page.
func (v *Viewer) Redo() bool {
	return v.step(func(key string, pv *pageView) bool {
		return v.history.Redo(key, pv.canvas, pv.engine)
	})
}

func (v *Viewer) step(fn func(string, *pageView) bool) bool {
	if !v.Loaded() || v.cfg.Mode == ModePreview {
		return false
	}
	v.text = nil
	v.cancelTool()
	pv, err := v.view(v.current)
	if err != nil {
		return false
	}
	key := pv.id.Key()
	if !fn(key, pv) {
		return false
	}
	if g, ok := v.grids[key]; ok {
		g.on = g.shown(pv.canvas.Snapshot())
	}
	v.invalidateThumb(v.current)
	v.markDirty()
	return true
}
