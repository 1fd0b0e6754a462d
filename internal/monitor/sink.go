package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/wordwatch/internal/dom"
)

// Sink receives the marked document after a scan changed it.
type Sink interface {
	Write(doc *dom.Document) error
}

// FileSink writes the rendered document to a file, replacing it
// atomically so readers never see a partial page.
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the output file path.
func (f *FileSink) Path() string {
	return f.path
}

// Write renders doc into a temporary file next to the target and renames
// it into place.
func (f *FileSink) Write(doc *dom.Document) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".wordwatch-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success

	if err := doc.Render(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to render document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}
