package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"inkpdf/internal/logx"
	"inkpdf/internal/store"
	"inkpdf/internal/viewer"
)

func TestConfigParse(t *testing.T) {
	rc := `
# inkpdf settings
mode = Student
view_mode=continuous
autosave = false
save_delay = 1500
zoom_step = 0.5
savedir = ~/notes
server_url = http://localhost:8080
confirm = false
log_level = debug
unknown = whatever
max_zoom = nope
`
	c := defaultConfig()
	c.parse(strings.NewReader(rc), "/home/ann")

	want := defaultConfig()
	want.Mode = viewer.ModeStudent
	want.ViewMode = viewer.ViewContinuous
	want.AutoSave = false
	want.SaveDelay = 1500 * time.Millisecond
	want.ZoomStep = 0.5
	want.SaveDirectory = "/home/ann/notes"
	want.ServerURL = "http://localhost:8080"
	want.Confirmations = false
	want.LogLevel = logx.LevelDebug
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestConfigSaveDelayDuration(t *testing.T) {
	c := defaultConfig()
	c.parse(strings.NewReader("save_delay=10s"), "/")
	if c.SaveDelay != 10*time.Second {
		t.Errorf("save delay = %v", c.SaveDelay)
	}
}

func TestConfigStore(t *testing.T) {
	c := defaultConfig()
	if _, ok := c.newStore().(*store.File); !ok {
		t.Error("expected a file store without a server")
	}
	c.ServerURL = "http://example.test/"
	if _, ok := c.newStore().(*store.HTTP); !ok {
		t.Error("expected an HTTP store")
	}
}

func TestViewerConfigCarriesSettings(t *testing.T) {
	c := defaultConfig()
	c.Mode = viewer.ModeTeacher
	c.MaxZoom = 4
	vc := c.viewerConfig()
	if vc.Mode != viewer.ModeTeacher || vc.MaxZoom != 4 || vc.Tools.ValidationDelay != time.Second {
		t.Errorf("viewer config %+v", vc)
	}
}

func TestCleanClipboardText(t *testing.T) {
	got := cleanClipboardText("a\r\nb\tc\x07\rd")
	if got != "a\nb    c\nd" {
		t.Errorf("got %q", got)
	}
}
