package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"inkpdf/internal/graph"
	"inkpdf/internal/logx"
	"inkpdf/internal/viewer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inkpdf <file.pdf> [file-id]")
		os.Exit(2)
	}
	path := os.Args[1]
	fileID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(os.Args) > 2 {
		fileID = os.Args[2]
	}

	config := loadConfig()
	logger, closeLog := openLog(config.LogLevel)
	defer closeLog()

	v := viewer.New(config.viewerConfig(),
		viewer.WithLogger(logger),
		viewer.WithStore(config.newStore(), fileID),
	)
	ctx := context.Background()
	if err := v.OpenFile(ctx, path); err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(
		newModel(v, config, logger, path),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, runErr := p.Run()
	if err := v.Close(ctx); err != nil {
		logger.Error("failed to save on exit", logx.Err(err))
		fmt.Fprintln(os.Stderr, err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}

// openLog writes to ~/.inkpdf.log; the terminal belongs to the UI.
func openLog(level logx.Level) (logx.Logger, func()) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return logx.Nop(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(homeDir, ".inkpdf.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return logx.Nop(), func() {}
	}
	var w io.Writer = f
	return logx.New(w, "inkpdf ", level), func() { f.Close() }
}

func newModel(v *viewer.Viewer, config *Config, logger logx.Logger, filename string) model {
	m := model{
		viewer:   v,
		config:   config,
		log:      logger,
		filename: filename,
		mode:     ModeNormal,
		notices:  &notices{},
	}
	n := m.notices
	v.On(viewer.EventToolFlash, func(viewer.Event) {
		n.flashUntil = time.Now().Add(flashDuration)
	})
	v.On(viewer.EventWarning, func(e viewer.Event) {
		if err, ok := e.Data.(error); ok {
			n.warning = err.Error()
		}
	})
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampPan()
		return m, nil

	case tickMsg:
		m.viewer.Tick(time.Time(msg))
		return m, tick()

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "esc", "q":
				m.help = false
			}
			return m, nil
		}
		m.errorMessage = ""
		m.notices.warning = ""
		switch m.mode {
		case ModeConfirm:
			return m.handleConfirm(msg.String())
		case ModeTextInput:
			return m.handleTextKey(msg), nil
		case ModeFunctionInput:
			return m.handleFunctionKey(msg), nil
		}
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.successMessage = ""
	if name, ok := toolKeys[key]; ok {
		if err := m.viewer.SetTool(name); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "tool: " + string(name)
		}
		return m, nil
	}
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		return m.confirm(ConfirmQuit)
	case "?":
		m.help = true
	case "u":
		m.undo()
	case "U":
		m.redo()
	case "+", "=":
		m.zoom(m.viewer.ZoomIn)
	case "-":
		m.zoom(m.viewer.ZoomOut)
	case "n", "pgdown":
		m.gotoPage(m.viewer.NextPage)
	case "N", "pgup":
		m.gotoPage(m.viewer.PrevPage)
	case "left", "right", "up", "down", "H", "J", "K", "L":
		m.handlePan(key, m.getMoveSpeed(key))
	case "v":
		m.toggleViewMode()
	case "g":
		m.report(m.viewer.ToggleGrid(), "grid toggled")
	case "B":
		_, err := m.viewer.InsertBlank(m.viewer.CurrentPage())
		m.report(err, "blank page inserted")
	case "G":
		_, err := m.viewer.InsertGraph(m.viewer.CurrentPage(), graph.DefaultConfig())
		m.report(err, "graph page inserted")
	case "f":
		if _, err := m.viewer.GraphConfig(); err != nil {
			m.errorMessage = err.Error()
			break
		}
		m.inputText = ""
		m.mode = ModeFunctionInput
	case "F":
		m.report(m.viewer.ClearFunctions(), "functions cleared")
	case "D":
		return m.confirm(ConfirmDeletePage)
	case "X":
		return m.confirm(ConfirmClearPage)
	case "s":
		m.report(m.viewer.Save(context.Background()), "annotations saved")
	case "P":
		path, err := m.exportPDF()
		m.report(err, "exported "+path)
	case "S":
		path, err := m.exportPNG()
		m.report(err, "exported "+path)
	case "y":
		m.copyReadout()
	case "esc":
		if t := m.viewer.ActiveTool(); t != nil && t.Busy() {
			t.Cancel()
		}
	}
	return m, nil
}

func (m *model) report(err error, success string) {
	if err != nil {
		m.errorMessage = err.Error()
		m.log.Warn("command failed", logx.Err(err))
		return
	}
	m.successMessage = success
}

func (m model) handleMouse(msg tea.MouseMsg) model {
	if m.mode != ModeNormal && m.mode != ModeTextInput {
		return m
	}
	c := cell{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case tea.MouseWheelUp:
		m.handlePan("up", 1)
		return m
	case tea.MouseWheelDown:
		m.handlePan("down", 1)
		return m
	case tea.MouseLeft:
		d, p, ok := m.cellToPage(c)
		if !ok {
			return m
		}
		if d != m.viewer.CurrentPage() {
			if err := m.viewer.SetPage(d); err != nil {
				m.errorMessage = err.Error()
				return m
			}
		}
		if err := m.viewer.PointerDown(p, 0.5); err != nil {
			m.errorMessage = err.Error()
			return m
		}
		if m.viewer.Text() != nil {
			m.mode = ModeTextInput
			return m
		}
		m.dragging = true
		m.dragPage = d
		m.lastPoint = p
	case tea.MouseMotion:
		if !m.dragging {
			return m
		}
		d, p, ok := m.cellToPage(c)
		if !ok || d != m.dragPage {
			m.viewer.PointerLeave()
			m.dragging = false
			return m
		}
		m.viewer.PointerMove(p, 0.5)
		m.lastPoint = p
	case tea.MouseRelease:
		if !m.dragging {
			return m
		}
		m.dragging = false
		d, p, ok := m.cellToPage(c)
		if !ok || d != m.dragPage {
			p = m.lastPoint
		}
		m.viewer.PointerUp(p)
	}
	return m
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	if m.width < 1 || m.height < 2 {
		return ""
	}
	var result strings.Builder
	for _, line := range m.renderPages(m.width, m.pageRows()) {
		result.WriteString(line)
		result.WriteString("\n")
	}
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) statusLine() string {
	v := m.viewer
	switch m.mode {
	case ModeConfirm:
		return promptStyle.Render(m.confirmPrompt() + " (y/n)")
	case ModeFunctionInput:
		return promptStyle.Render("y = " + m.inputText + "█")
	case ModeTextInput:
		text := ""
		if t := v.Text(); t != nil {
			text = strings.Join(t.Lines, "⏎")
		}
		return promptStyle.Render("text: " + text + "█  (ctrl+s commit, esc cancel)")
	}

	status := fmt.Sprintf("%s | %s | page %d/%d | %.0f%% | %s",
		m.modeString(), v.Mode(), v.CurrentPage(), v.TotalPages(), v.Scale()*100, v.Tool())
	if v.GridOn() {
		status += " | grid"
	}
	if v.Dirty() {
		status += " | unsaved"
	}
	if r := v.LastReadout(); r.Text != "" {
		status += " | " + r.Text
	}
	switch {
	case m.errorMessage != "":
		return errorStyle.Render(status + " | ERROR: " + m.errorMessage)
	case time.Now().Before(m.notices.flashUntil):
		return flashStyle.Render(status)
	case m.notices.warning != "":
		status += " | warning: " + m.notices.warning
	case m.successMessage != "":
		status += " | " + m.successMessage
	default:
		status += " | ? for help | q to quit"
	}
	return statusStyle.Render(status)
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeTextInput:
		return "TEXT"
	case ModeFunctionInput:
		return "FUNCTION"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) helpView() string {
	helpLines := []string{
		"inkpdf help",
		"===========",
		"",
		"Tools (draw with the mouse):",
		"  p pen   h highlighter   e eraser   t text",
		"  r ruler   c compass   a protractor   o arc",
		"  w arrow   b rectangle   i circle",
		"  Hold the pen still for a second to straighten a stroke.",
		"",
		"Pages:",
		"  n / N      next / previous page",
		"  B          insert blank page after this one",
		"  G          insert graph page after this one",
		"  f / F      add / clear graph functions",
		"  D          delete page",
		"  X          clear page annotations",
		"  g          toggle grid",
		"",
		"View:",
		"  + / -      zoom in / out",
		"  arrows     pan (Shift+h/j/k/l pans faster)",
		"  v          single / continuous view",
		"",
		"General:",
		"  u / U      undo / redo",
		"  s          save annotations",
		"  P / S      export PDF / current page PNG",
		"  y          copy last measurement",
		"  esc        cancel the gesture in progress",
		"  ?          toggle this help",
		"  q          quit",
	}
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	if visible > len(helpLines) {
		visible = len(helpLines)
	}
	return strings.Join(helpLines[:visible], "\n") + "\n" + statusStyle.Render("Esc to close")
}
