// Package render draws chart configurations onto concrete surfaces: image
// files through gonum/plot and HTML pages through Chart.js.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"gastos/internal/chart"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrUnsupportedKind   = errors.New("unsupported chart kind")
	ErrNoDataset         = errors.New("chart has no dataset")
)

// Drawer writes one chart configuration to w.
type Drawer interface {
	Draw(ctx context.Context, w io.Writer, cfg chart.Config) error
}

// ForFormat returns the drawer for an output format: "html" for a Chart.js
// page, or an image format understood by gonum/plot.
func ForFormat(format string, width, height vg.Length) (Drawer, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch {
	case format == "html" || format == "htm":
		return Page{}, nil
	case imageFormats[format]:
		return Image{Format: format, Width: width, Height: height}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// File renders to a path on disk. The file is replaced atomically, so readers
// never observe a half-written chart.
type File struct {
	Path   string
	Width  vg.Length
	Height vg.Length
}

var _ chart.Renderer = (*File)(nil)

// NewFile validates the output path and returns a renderer bound to it.
func NewFile(path string, width, height vg.Length) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("output path is empty")
	}
	if _, err := ForFormat(filepath.Ext(path), width, height); err != nil {
		return nil, err
	}
	return &File{Path: path, Width: width, Height: height}, nil
}

func (f *File) Render(ctx context.Context, cfg chart.Config) error {
	d, err := ForFormat(filepath.Ext(f.Path), f.Width, f.Height)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := d.Draw(ctx, tmp, cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}

// Writer renders to an io.Writer, e.g. an HTTP response.
type Writer struct {
	W      io.Writer
	Format string
	Width  vg.Length
	Height vg.Length
}

var _ chart.Renderer = (*Writer)(nil)

func (w *Writer) Render(ctx context.Context, cfg chart.Config) error {
	d, err := ForFormat(w.Format, w.Width, w.Height)
	if err != nil {
		return err
	}
	return d.Draw(ctx, w.W, cfg)
}
