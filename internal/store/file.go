package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File keeps annotations as <dir>/<fileID>.annotations.json.
type File struct {
	Dir string
}

// NewFile returns a store rooted at dir. An empty dir means the working
// directory.
func NewFile(dir string) *File {
	return &File{Dir: dir}
}

// Path returns the file used for fileID.
func (f *File) Path(fileID string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, fileID)
	return filepath.Join(f.Dir, name+".annotations.json")
}

func (f *File) Load(ctx context.Context, fileID string) (*Annotations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(fileID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a := Empty()
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("invalid annotations file: %w", err)
	}
	if a.CanvasData == nil {
		a.CanvasData = map[string]PageImage{}
	}
	return a, nil
}

// Save writes a temporary file and renames it into place.
func (f *File) Save(ctx context.Context, fileID string, a *Annotations) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Dir != "" {
		if err := os.MkdirAll(f.Dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	path := f.Path(fileID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
