package main

import (
	"time"

	"inkpdf/internal/geom"
	"inkpdf/internal/logx"
	"inkpdf/internal/viewer"
)

type model struct {
	width          int
	height         int
	panX           int
	panY           int
	mode           Mode
	help           bool
	viewer         *viewer.Viewer
	log            logx.Logger
	config         *Config
	filename       string
	confirmAction  ConfirmAction
	inputText      string
	dragging       bool
	dragPage       int
	lastPoint      geom.Point
	notices        *notices
	errorMessage   string
	successMessage string
}

type tickMsg time.Time

// cell is a terminal position.
type cell struct {
	X, Y int
}

// notices collects viewer events between frames.
type notices struct {
	flashUntil time.Time
	warning    string
}
