package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) undo() {
	if !m.viewer.Undo() {
		m.successMessage = "nothing to undo"
	}
}

func (m *model) redo() {
	if !m.viewer.Redo() {
		m.successMessage = "nothing to redo"
	}
}

// confirm asks before a destructive action when confirmations are on.
func (m model) confirm(action ConfirmAction) (tea.Model, tea.Cmd) {
	if !m.config.Confirmations {
		return m.runConfirmed(action)
	}
	m.confirmAction = action
	m.mode = ModeConfirm
	return m, nil
}

func (m model) confirmPrompt() string {
	switch m.confirmAction {
	case ConfirmDeletePage:
		return "Delete this page and its annotations?"
	case ConfirmClearPage:
		return "Clear every annotation on this page?"
	case ConfirmQuit:
		if m.viewer.Dirty() {
			return "Quit? Unsaved annotations are saved on exit when auto-save is on."
		}
		return "Quit inkpdf?"
	}
	return "Are you sure?"
}

func (m model) handleConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		m.mode = ModeNormal
		return m.runConfirmed(m.confirmAction)
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return m, nil
}

func (m model) runConfirmed(action ConfirmAction) (tea.Model, tea.Cmd) {
	switch action {
	case ConfirmDeletePage:
		m.report(m.viewer.DeletePage(m.viewer.CurrentPage()), "page deleted")
		m.clampPan()
	case ConfirmClearPage:
		m.report(m.viewer.ClearPage(), "page cleared")
	case ConfirmQuit:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleTextKey(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEsc:
		m.viewer.TextCancel()
		m.mode = ModeNormal
	case tea.KeyCtrlS:
		m.viewer.TextCommit()
		m.mode = ModeNormal
	case tea.KeyEnter:
		m.viewer.TextNewline()
	case tea.KeyBackspace:
		m.viewer.TextBackspace()
	case tea.KeyCtrlV:
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = err.Error()
			break
		}
		m.viewer.TextInsert(cleanClipboardText(text))
	case tea.KeySpace:
		m.viewer.TextInsert(" ")
	case tea.KeyRunes:
		m.viewer.TextInsert(string(msg.Runes))
	}
	if m.viewer.Text() == nil {
		m.mode = ModeNormal
	}
	return m
}

func (m model) handleFunctionKey(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
	case tea.KeyEnter:
		m.mode = ModeNormal
		if m.inputText == "" {
			break
		}
		warnings, err := m.viewer.AddFunction(m.inputText, "")
		switch {
		case err != nil:
			m.errorMessage = err.Error()
		case len(warnings) > 0:
			m.errorMessage = warnings[len(warnings)-1].Error()
		default:
			m.successMessage = "plotted y = " + m.inputText
		}
	case tea.KeyBackspace:
		if r := []rune(m.inputText); len(r) > 0 {
			m.inputText = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.inputText += " "
	case tea.KeyRunes:
		m.inputText += string(msg.Runes)
	}
	return m
}
