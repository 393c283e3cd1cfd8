package logx

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", LevelWarn)
	l.Info("hidden")
	l.Warn("shown", Int("page", 3))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown page=3") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", LevelDebug).With(String("file", "a.pdf"))
	l.Error("save failed", Err(errors.New("boom")))
	if !strings.Contains(buf.String(), "file=a.pdf error=boom") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"off":     LevelNone,
		"???":     LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
