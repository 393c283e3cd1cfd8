package viewer

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/fogleman/gg"

	"inkpdf/internal/graph"
	"inkpdf/internal/logx"
	"inkpdf/internal/pages"
	"inkpdf/internal/raster"
)

// gridState remembers the annotation layer around the last grid overlay of
// a page so the grid can be lifted off without touching ink drawn over it.
type gridState struct {
	before raster.Snapshot
	after  raster.Snapshot
	on     bool
}

// shown reports whether cur still carries the grid: most pixels the grid
// changed are closer to their gridded value than to their original one.
func (g *gridState) shown(cur raster.Snapshot) bool {
	if cur.Width != g.after.Width || cur.Height != g.after.Height {
		return g.on
	}
	lines, kept := 0, 0
	for i := 3; i < len(g.after.Pix); i += 4 {
		a, b := int(g.after.Pix[i]), int(g.before.Pix[i])
		if a == b {
			continue
		}
		lines++
		c := int(cur.Pix[i])
		if absInt(c-a) < absInt(c-b) {
			kept++
		}
	}
	return lines > 0 && kept*2 > lines
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (g *gridState) resize(w, h int) {
	if g.before.Width == w && g.before.Height == h {
		return
	}
	g.before = raster.Resample(g.before, w, h)
	g.after = raster.Resample(g.after, w, h)
}

func (v *Viewer) editable() error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	if v.cfg.Mode == ModePreview {
		return ErrReadOnly
	}
	return nil
}

// InsertBlank adds a blank page after display page after (0 for the front)
// and focuses it.
func (v *Viewer) InsertBlank(after int) (pages.Identifier, error) {
	return v.insert(after, nil)
}

// InsertGraph adds a graph page after display page after and focuses it.
func (v *Viewer) InsertGraph(after int, cfg graph.Config) (pages.Identifier, error) {
	if !cfg.Valid() {
		return pages.Identifier{}, fmt.Errorf("invalid graph range %v..%v, %v..%v", cfg.XMin, cfg.XMax, cfg.YMin, cfg.YMax)
	}
	return v.insert(after, &cfg)
}

func (v *Viewer) insert(after int, cfg *graph.Config) (pages.Identifier, error) {
	if err := v.editable(); err != nil {
		return pages.Identifier{}, err
	}
	if after < 0 || after > v.structure.TotalPages() {
		return pages.Identifier{}, fmt.Errorf("%w: insert after %d of %d", ErrNoPage, after, v.structure.TotalPages())
	}
	v.commitText()
	v.dropTool()
	var id pages.Identifier
	if cfg != nil {
		id = v.structure.InsertGraph(after, *cfg, v.Now())
	} else {
		id = v.structure.InsertBlank(after, v.Now())
	}
	d := after + 1
	v.thumbs = pages.ShiftUp(v.thumbs, d)
	v.current = d
	v.log.Info("page inserted", logx.String("page", id.Key()), logx.Int("display", d))
	v.pagesChanged()
	if _, err := v.view(d); err != nil {
		return id, err
	}
	return id, nil
}

// DeletePage removes display page d with its annotations and history.
func (v *Viewer) DeletePage(d int) error {
	if err := v.editable(); err != nil {
		return err
	}
	v.commitText()
	v.dropTool()
	id, err := v.structure.Delete(d)
	if err != nil {
		return err
	}
	key := id.Key()
	if pv, ok := v.views[key]; ok {
		v.dropView(key, pv)
	}
	v.history.Forget(key)
	delete(v.pending, key)
	delete(v.grids, key)
	v.thumbs = pages.ShiftDown(v.thumbs, d)
	if v.current > d || v.current > v.structure.TotalPages() {
		v.current--
	}
	if v.current < 1 {
		v.current = 1
	}
	v.log.Info("page deleted", logx.String("page", key), logx.Int("display", d))
	v.pagesChanged()
	_, err = v.view(v.current)
	return err
}

func (v *Viewer) pagesChanged() {
	v.markDirty()
	v.emit(Event{Name: EventPagesChanged, Page: v.current, Data: v.structure.TotalPages()})
}

// ClearPage erases every annotation of the current page. It can be undone.
func (v *Viewer) ClearPage() error {
	if err := v.editable(); err != nil {
		return err
	}
	v.text = nil
	v.cancelTool()
	pv, err := v.view(v.current)
	if err != nil {
		return err
	}
	pv.canvas.Clear()
	pv.engine.Clear()
	if g, ok := v.grids[pv.id.Key()]; ok {
		g.on = false
	}
	v.commit(pv.id.Key())
	return nil
}

// GridOn reports whether the current page shows the grid overlay.
func (v *Viewer) GridOn() bool {
	id, ok := v.Identifier(v.current)
	if !ok {
		return false
	}
	g, ok := v.grids[id.Key()]
	return ok && g.on
}

// ToggleGrid draws or lifts the grid overlay of the current page. Lifting
// it keeps anything drawn over the grid lines.
func (v *Viewer) ToggleGrid() error {
	if err := v.editable(); err != nil {
		return err
	}
	v.commitText()
	v.cancelTool()
	pv, err := v.view(v.current)
	if err != nil {
		return err
	}
	key := pv.id.Key()
	if g, ok := v.grids[key]; ok && g.on {
		g.on = false
		if !raster.RevertUnchanged(pv.canvas.Annot, g.before, g.after) {
			v.log.Warn("grid snapshot does not fit the page", logx.String("page", key))
		}
		v.commit(key)
		return nil
	}
	g := &gridState{before: pv.canvas.Snapshot(), on: true}
	graph.DrawGrid(pv.canvas.Context(), v.cfg.GridSpacing*v.scale, v.cfg.GridColor)
	g.after = pv.canvas.Snapshot()
	v.grids[key] = g
	v.commit(key)
	return nil
}

// GraphConfig returns the configuration of the current graph page.
func (v *Viewer) GraphConfig() (graph.Config, error) {
	id, ok := v.Identifier(v.current)
	if !ok {
		return graph.Config{}, ErrNotOpen
	}
	if !id.IsGraph {
		return graph.Config{}, ErrNotGraph
	}
	if id.Graph == nil {
		return graph.DefaultConfig(), nil
	}
	return id.Graph.Clone(), nil
}

// SetGraphConfig replaces the plane and functions of the current graph
// page and redraws it. Functions that fail to plot are returned as
// warnings; they stay in the configuration.
func (v *Viewer) SetGraphConfig(cfg graph.Config) ([]error, error) {
	if err := v.editable(); err != nil {
		return nil, err
	}
	id, ok := v.Identifier(v.current)
	if !ok {
		return nil, ErrNotOpen
	}
	if !id.IsGraph {
		return nil, ErrNotGraph
	}
	if !cfg.Valid() {
		return nil, fmt.Errorf("invalid graph range %v..%v, %v..%v", cfg.XMin, cfg.XMax, cfg.YMin, cfg.YMax)
	}
	if err := v.structure.SetGraph(id.Key(), cfg); err != nil {
		return nil, err
	}
	var warnings []error
	if pv, ok := v.views[id.Key()]; ok && pv.canvas.Alive() {
		base := pv.canvas.Base
		draw.Draw(base, base.Bounds(), image.White, image.Point{}, draw.Src)
		warnings = graph.Render(gg.NewContextForRGBA(base), cfg)
		c := cfg.Clone()
		pv.id.Graph = &c
	}
	for _, w := range warnings {
		v.warn(v.current, w)
	}
	v.invalidateThumb(v.current)
	v.markDirty()
	return warnings, nil
}

// AddFunction plots one more expression on the current graph page.
func (v *Viewer) AddFunction(expr, color string) ([]error, error) {
	cfg, err := v.GraphConfig()
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = graph.DefaultColors[len(cfg.Functions)%len(graph.DefaultColors)]
	}
	cfg.Functions = append(cfg.Functions, graph.Function{Expr: expr, Color: color})
	return v.SetGraphConfig(cfg)
}

// ClearFunctions removes every plotted expression of the current graph page.
func (v *Viewer) ClearFunctions() error {
	cfg, err := v.GraphConfig()
	if err != nil {
		return err
	}
	cfg.Functions = nil
	_, err = v.SetGraphConfig(cfg)
	return err
}
