package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileSource follows a local HTML file.
type FileSource struct {
	path        string
	maxBodySize int64
	logger      *slog.Logger

	detector changeDetector
}

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithFileMaxBodySize caps how many bytes of the file are read.
func WithFileMaxBodySize(size int64) FileOption {
	return func(s *FileSource) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithFileLogger sets the logger.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(s *FileSource) {
		s.logger = logger
	}
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string, opts ...FileOption) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	s := &FileSource{
		path:        abs,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Location returns the file URL of the watched file.
func (s *FileSource) Location() string {
	return "file://" + filepath.ToSlash(s.path)
}

// Path returns the absolute path of the watched file.
func (s *FileSource) Path() string {
	return s.path
}

// Run reads the file and then re-reads it whenever it is written,
// created or renamed into place. The parent directory is watched so that
// editors replacing the file atomically are followed.
func (s *FileSource) Run(ctx context.Context, emit EmitFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(s.path), err)
	}

	if err := s.reload(emit); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.reload(emit); err != nil {
				// A rename away or a half written file; the next event retries.
				s.logger.Debug("reload failed", "path", s.path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "path", s.path, "error", err)
		}
	}
}

func (s *FileSource) reload(emit EmitFunc) error {
	body, err := s.read()
	if err != nil {
		return err
	}
	snap := NewSnapshot(s.Location(), body)
	if !s.detector.changed(snap) {
		return nil
	}
	s.logger.Debug("file changed", "path", s.path, "bytes", len(body))
	emit(snap)
	return nil
}

func (s *FileSource) read() ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, s.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return body, nil
}
