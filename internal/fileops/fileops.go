package fileops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/epuerta/applypatch/internal/patch"
)

// OSFileSystem implements patch.FileSystem against the real filesystem. All
// relative paths are resolved against Root, so a patch can be applied inside
// a chosen working directory without changing the process cwd.
type OSFileSystem struct {
	Root string
}

// New creates a filesystem rooted at dir; an empty dir means the process
// working directory.
func New(dir string) *OSFileSystem {
	return &OSFileSystem{Root: dir}
}

func (f *OSFileSystem) resolve(path string) string {
	if f.Root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Root, path)
}

// ReadFile returns the full content of an existing file
func (f *OSFileSystem) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		return "", fmt.Errorf("error reading file: %w", err)
	}
	return string(data), nil
}

// WriteFile writes content to a file, creating parent directories as needed
func (f *OSFileSystem) WriteFile(path string, content string) error {
	target := f.resolve(path)

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directories: %w", err)
	}

	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}
	return nil
}

// RemoveFile deletes the file at path; a missing file is not an error
func (f *OSFileSystem) RemoveFile(path string) error {
	err := os.Remove(f.resolve(path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing file: %w", err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(f.resolve(path))
	return err == nil
}

var _ patch.FileSystem = (*OSFileSystem)(nil)
