package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText drops control characters other than newlines and tabs
// and normalizes line endings.
func cleanClipboardText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			result.WriteString("    ")
		case r == '\n' || r >= 32:
			result.WriteRune(r)
		}
	}
	return result.String()
}

func (m *model) copyReadout() {
	r := m.viewer.LastReadout()
	if r.Text == "" {
		m.errorMessage = "no measurement to copy"
		return
	}
	if err := clipboard.WriteAll(r.Text); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "copied " + r.Text
}
