package main

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"inkpdf/internal/tools"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeTextInput
	ModeFunctionInput
	ModeConfirm
)

type ConfirmAction int

const (
	ConfirmDeletePage ConfirmAction = iota
	ConfirmClearPage
	ConfirmQuit
)

const (
	tickInterval  = 50 * time.Millisecond
	flashDuration = 300 * time.Millisecond
	// pointsPerCell is the page width, in points at zoom 1, covered by one
	// terminal column. Each cell is two half-block pixels tall.
	pointsPerCell = 612.0 / 100
)

var toolKeys = map[string]tools.Name{
	"p": tools.Pen,
	"h": tools.Highlighter,
	"e": tools.Eraser,
	"r": tools.Ruler,
	"c": tools.Compass,
	"a": tools.Protractor,
	"o": tools.Arc,
	"w": tools.Arrow,
	"b": tools.Rectangle,
	"i": tools.Circle,
	"t": tools.Text,
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#eceff1")).
			Background(lipgloss.Color("#37474f"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#c62828"))
	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1b5e20")).
			Background(lipgloss.Color("#a5d6a7"))
	promptStyle = lipgloss.NewStyle().Bold(true)
)
