package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/epuerta/applypatch/internal/patch"
)

func TestWriteFileCreatesParentDirs(t *testing.T) {
	tempDir := t.TempDir()
	fs := New(tempDir)

	if err := fs.WriteFile(filepath.Join("nested", "deep", "file.txt"), "content"); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, "nested", "deep", "file.txt"))
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("Expected %q, got %q", "content", string(data))
	}
}

func TestRemoveFileMissingIsNoOp(t *testing.T) {
	fs := New(t.TempDir())

	if err := fs.RemoveFile("never-existed.txt"); err != nil {
		t.Errorf("Removing a missing file must not error: %v", err)
	}
}

func TestReadFileMissingErrors(t *testing.T) {
	fs := New(t.TempDir())

	if _, err := fs.ReadFile("absent.txt"); err == nil {
		t.Errorf("Expected error reading a missing file")
	}
}

func TestRootResolution(t *testing.T) {
	tempDir := t.TempDir()
	fs := New(tempDir)

	if err := fs.WriteFile("rel.txt", "x"); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if !fs.Exists("rel.txt") {
		t.Errorf("Expected rel.txt to exist under root")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "rel.txt")); err != nil {
		t.Errorf("Expected file under the root dir: %v", err)
	}
}

// End-to-end: the full pipeline against a real directory.
func TestProcessPatchOnDisk(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	fs := New(tempDir)

	err := os.WriteFile(filepath.Join(tempDir, "existing.txt"), []byte("Line 1\nLine 2\nLine 3"), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	patchText := `*** Begin Patch
*** Update File: existing.txt
 Line 1
-Line 2
+Line 2 modified
 Line 3
*** Add File: sub/new.txt
+This is a new file
+With multiple lines
*** End Patch`

	result, err := patch.ProcessPatch(patchText, fs)
	if err != nil {
		t.Fatalf("Failed to process patch: %v", err)
	}
	if result != "Done!" {
		t.Errorf("Expected Done!, got %q", result)
	}

	updated, err := os.ReadFile(filepath.Join(tempDir, "existing.txt"))
	if err != nil {
		t.Fatalf("Failed to read updated file: %v", err)
	}
	if string(updated) != "Line 1\nLine 2 modified\nLine 3" {
		t.Errorf("Updated content not correct: %q", string(updated))
	}

	added, err := os.ReadFile(filepath.Join(tempDir, "sub", "new.txt"))
	if err != nil {
		t.Fatalf("Failed to read added file: %v", err)
	}
	if string(added) != "This is a new file\nWith multiple lines" {
		t.Errorf("Added content not correct: %q", string(added))
	}
}
