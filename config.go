package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"inkpdf/internal/logx"
	"inkpdf/internal/store"
	"inkpdf/internal/viewer"
)

type Config struct {
	Mode          viewer.Mode
	ViewMode      viewer.ViewMode
	AutoSave      bool
	SaveDelay     time.Duration
	MinZoom       float64
	MaxZoom       float64
	ZoomStep      float64
	PageSpacing   float64
	Color         string
	SaveDirectory string
	ServerURL     string
	Confirmations bool
	LogLevel      logx.Level
}

func defaultConfig() *Config {
	d := viewer.DefaultConfig()
	return &Config{
		Mode:          d.Mode,
		ViewMode:      d.ViewMode,
		AutoSave:      d.AutoSave,
		SaveDelay:     d.SaveDelay,
		MinZoom:       d.MinZoom,
		MaxZoom:       d.MaxZoom,
		ZoomStep:      d.ZoomStep,
		PageSpacing:   d.PageSpacing,
		Color:         d.Color,
		Confirmations: true,
		LogLevel:      logx.LevelInfo,
	}
}

func loadConfig() *Config {
	config := defaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}

	file, err := os.Open(filepath.Join(homeDir, ".inkpdfrc"))
	if err != nil {
		return config
	}
	defer file.Close()

	config.parse(file, homeDir)
	return config
}

// parse reads key=value lines. Unknown keys and bad values are skipped.
func (c *Config) parse(r io.Reader, homeDir string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "mode":
			if m, err := viewer.ParseMode(value); err == nil {
				c.Mode = m
			}
		case "viewmode", "view_mode", "view":
			if m, err := viewer.ParseViewMode(value); err == nil {
				c.ViewMode = m
			}
		case "autosave", "auto_save":
			c.AutoSave = strings.ToLower(value) == "true"
		case "savedelay", "save_delay":
			if d, err := time.ParseDuration(value); err == nil && d > 0 {
				c.SaveDelay = d
			} else if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
				c.SaveDelay = time.Duration(ms) * time.Millisecond
			}
		case "minzoom", "min_zoom":
			setFloat(&c.MinZoom, value)
		case "maxzoom", "max_zoom":
			setFloat(&c.MaxZoom, value)
		case "zoomstep", "zoom_step":
			setFloat(&c.ZoomStep, value)
		case "pagespacing", "page_spacing":
			setFloat(&c.PageSpacing, value)
		case "color", "colour":
			c.Color = value
		case "savedirectory", "save_directory", "savedir":
			if strings.HasPrefix(value, "~") {
				value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
			}
			if !filepath.IsAbs(value) {
				if absPath, err := filepath.Abs(value); err == nil {
					value = absPath
				}
			}
			c.SaveDirectory = value
		case "serverurl", "server_url", "server":
			c.ServerURL = value
		case "confirmations", "confirm":
			c.Confirmations = strings.ToLower(value) == "true"
		case "loglevel", "log_level":
			c.LogLevel = logx.ParseLevel(value)
		}
	}
}

func setFloat(dst *float64, value string) {
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		*dst = f
	}
}

func (c *Config) viewerConfig() viewer.Config {
	vc := viewer.DefaultConfig()
	vc.Mode = c.Mode
	vc.ViewMode = c.ViewMode
	vc.AutoSave = c.AutoSave
	vc.SaveDelay = c.SaveDelay
	vc.MinZoom = c.MinZoom
	vc.MaxZoom = c.MaxZoom
	vc.ZoomStep = c.ZoomStep
	vc.PageSpacing = c.PageSpacing
	vc.Color = c.Color
	return vc
}

// newStore saves to the annotation server when one is configured and to
// JSON files next to the exports otherwise.
func (c *Config) newStore() store.Store {
	if c.ServerURL != "" {
		return store.NewHTTP(c.ServerURL)
	}
	dir := c.SaveDirectory
	if dir == "" {
		dir = "."
	}
	return store.NewFile(dir)
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
