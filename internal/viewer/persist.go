package viewer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkpdf/internal/history"
	"inkpdf/internal/logx"
	"inkpdf/internal/store"
)

// ErrNoStore is returned by Save when the viewer has nowhere to save.
var ErrNoStore = errors.New("no annotation store configured")

const saveTimeout = 30 * time.Second

// Dirty reports whether there are edits not yet handed to the store.
func (v *Viewer) Dirty() bool { return v.dirty }

// markDirty records an edit and, with auto-save on, (re)arms the debounce
// timer so a burst of edits is saved once.
func (v *Viewer) markDirty() {
	v.dirty = true
	if !v.cfg.AutoSave || v.store == nil || v.closed {
		return
	}
	if v.saveTimer != nil && v.saveTimer.Active() {
		v.saveTimer.Reset(v.cfg.SaveDelay)
		return
	}
	v.saveTimer = v.sched.After(v.cfg.SaveDelay, v.autoSave)
}

// autoSave hands the current payload to the store on a goroutine. The
// result is delivered by Tick.
func (v *Viewer) autoSave() {
	if !v.Loaded() || !v.dirty {
		return
	}
	payload, err := v.Payload()
	if err != nil {
		v.log.Warn("failed to build annotations", logx.Err(err))
		return
	}
	v.dirty = false
	v.inflight++
	st, id, out := v.store, v.fileID, v.saves
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		out <- saveResult{err: st.Save(ctx, id, payload), at: time.Now()}
	}()
}

// Save commits pending text and saves every page synchronously.
func (v *Viewer) Save(ctx context.Context) error {
	if !v.Loaded() {
		return ErrNotOpen
	}
	if v.store == nil {
		return ErrNoStore
	}
	v.commitText()
	if v.saveTimer != nil {
		v.saveTimer.Stop()
	}
	payload, err := v.Payload()
	if err != nil {
		return err
	}
	if err := v.store.Save(ctx, v.fileID, payload); err != nil {
		v.dirty = true
		return fmt.Errorf("failed to save annotations: %w", err)
	}
	v.dirty = false
	v.log.Info("annotations saved", logx.String("file", v.fileID), logx.Int("pages", len(payload.CanvasData)))
	v.emit(Event{Name: EventAnnotationsSaved, Data: len(payload.CanvasData)})
	return nil
}

// Flush waits for background saves to finish and delivers their results.
func (v *Viewer) Flush() {
	v.drainSaves(true)
}

func (v *Viewer) drainSaves(wait bool) {
	for v.inflight > 0 {
		var r saveResult
		if wait {
			r = <-v.saves
		} else {
			select {
			case r = <-v.saves:
			default:
				return
			}
		}
		v.inflight--
		if r.err != nil {
			v.dirty = true
			v.log.Warn("auto-save failed", logx.String("file", v.fileID), logx.Err(r.err))
			v.emit(Event{Name: EventWarning, Data: r.err})
			continue
		}
		v.log.Debug("auto-saved", logx.String("file", v.fileID))
		v.emit(Event{Name: EventAnnotationsSaved, Data: r.at})
	}
}

// Payload builds the saved form of the session from each page's last
// committed state, so gestures still in progress are never saved. Pages are
// keyed by their current display number; pages without annotations are left
// out.
func (v *Viewer) Payload() (*store.Annotations, error) {
	if !v.Loaded() {
		return nil, ErrNotOpen
	}
	a := store.Empty()
	a.PageStructure = v.structure.Record()
	for i, id := range v.structure.Sequence() {
		key := id.Key()
		num := strconv.Itoa(i + 1)
		if top, ok := v.history.Top(key); ok {
			if blankEntry(top) {
				continue
			}
			pi, err := store.NewPageImage(top.Raster.Image(), top.Scale, top.Vector)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", i+1, err)
			}
			a.CanvasData[num] = pi
			continue
		}
		if pi, ok := v.pending[key]; ok {
			a.CanvasData[num] = pi
		}
	}
	return a, nil
}

func blankEntry(e history.Entry) bool {
	if e.Vector != nil && len(e.Vector.Strokes) > 0 {
		return false
	}
	for i := 3; i < len(e.Raster.Pix); i += 4 {
		if e.Raster.Pix[i] != 0 {
			return false
		}
	}
	return true
}
