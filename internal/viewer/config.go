package viewer

import (
	"fmt"
	"strings"
	"time"

	"inkpdf/internal/graph"
	"inkpdf/internal/history"
	"inkpdf/internal/tools"
)

// Mode gates the tools and colours offered to the user.
type Mode string

const (
	ModeTeacher Mode = "teacher"
	ModeStudent Mode = "student"
	ModePreview Mode = "preview"
	ModeSplit   Mode = "split"
)

// ViewMode selects between one page at a time and a scrolling column.
type ViewMode string

const (
	ViewSingle     ViewMode = "single"
	ViewContinuous ViewMode = "continuous"
)

// ParseMode accepts the mode names case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTeacher, ModeStudent, ModePreview, ModeSplit:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ParseViewMode accepts "single" or "continuous".
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ViewSingle, ViewContinuous:
		return m, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// Config holds every viewer option.
type Config struct {
	Mode        Mode
	ViewMode    ViewMode
	AutoSave    bool
	SaveDelay   time.Duration
	InitialZoom float64
	MinZoom     float64
	MaxZoom     float64
	ZoomStep    float64
	PageSpacing float64

	Color       string
	Size        float64
	TextSize    float64
	GridSpacing float64
	GridColor   string

	HistoryDepth int
	Tools        tools.Config
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Mode:         ModeTeacher,
		ViewMode:     ViewSingle,
		AutoSave:     true,
		SaveDelay:    3 * time.Second,
		InitialZoom:  1,
		MinZoom:      0.5,
		MaxZoom:      3,
		ZoomStep:     0.25,
		PageSpacing:  20,
		Color:        "#000000",
		Size:         2,
		TextSize:     16,
		GridSpacing:  graph.GridSpacing,
		GridColor:    "#90a4ae",
		HistoryDepth: history.DefaultDepth,
		Tools:        tools.DefaultConfig(),
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.ViewMode == "" {
		c.ViewMode = d.ViewMode
	}
	if c.SaveDelay <= 0 {
		c.SaveDelay = d.SaveDelay
	}
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom < c.MinZoom {
		c.MaxZoom = c.MinZoom
	}
	if c.ZoomStep <= 0 {
		c.ZoomStep = d.ZoomStep
	}
	if c.InitialZoom <= 0 {
		c.InitialZoom = d.InitialZoom
	}
	c.InitialZoom = clampF(c.InitialZoom, c.MinZoom, c.MaxZoom)
	if c.Color == "" {
		c.Color = d.Color
	}
	if c.Size <= 0 {
		c.Size = d.Size
	}
	if c.TextSize <= 0 {
		c.TextSize = d.TextSize
	}
	if c.GridSpacing <= 0 {
		c.GridSpacing = d.GridSpacing
	}
	if c.GridColor == "" {
		c.GridColor = d.GridColor
	}
	if c.HistoryDepth < 2 {
		c.HistoryDepth = d.HistoryDepth
	}
	if c.Tools == (tools.Config{}) {
		c.Tools = d.Tools
	}
}

// TeacherPalette is offered in teacher and split modes.
var TeacherPalette = []string{"#000000", "#d32f2f", "#1976d2", "#388e3c", "#f57c00", "#7b1fa2", "#fbc02d", "#ffffff"}

// StudentPalette is the reduced set offered to students.
var StudentPalette = []string{"#000000", "#1976d2", "#388e3c"}

var studentTools = map[tools.Name]bool{
	tools.Pen:         true,
	tools.Highlighter: true,
	tools.Eraser:      true,
	tools.Text:        true,
}

// Tools lists the tools available in mode.
func (m Mode) Tools() []tools.Name {
	switch m {
	case ModePreview:
		return nil
	case ModeStudent:
		return []tools.Name{tools.Pen, tools.Highlighter, tools.Eraser, tools.Text}
	}
	return append(append([]tools.Name(nil), tools.All...), tools.Text)
}

// Allows reports whether tool can be used in mode.
func (m Mode) Allows(tool tools.Name) bool {
	switch m {
	case ModePreview:
		return false
	case ModeStudent:
		return studentTools[tool]
	}
	return tool == tools.Text || contains(tools.All, tool)
}

// Palette lists the colours offered in mode.
func (m Mode) Palette() []string {
	switch m {
	case ModePreview:
		return nil
	case ModeStudent:
		return StudentPalette
	}
	return TeacherPalette
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
