package overlay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileBackend stores each document as <dir>/<name>.json, replaced
// atomically on every save.
type FileBackend struct {
	dir string
}

// OpenFile returns a FileBackend rooted at dir, creating it if needed.
func OpenFile(dir string) (*FileBackend, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, errors.New("file overlay directory is empty")
	}
	//nolint:gosec // G301: overlay lives in the user config directory
	if err := os.MkdirAll(trimmed, 0755); err != nil {
		return nil, fmt.Errorf("create overlay directory: %w", err)
	}
	return &FileBackend{dir: trimmed}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, unsafeNameChars.ReplaceAllString(name, "_")+".json")
}

// Load reads the document stored under name.
func (b *FileBackend) Load(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}
	return data, true, nil
}

// Save atomically replaces the document stored under name.
func (b *FileBackend) Save(_ context.Context, name string, data []byte) error {
	path := b.path(name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	return nil
}

// Close is a no-op.
func (b *FileBackend) Close() error {
	return nil
}
