package interview

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadResume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	content := "Jane Doe\nSenior Backend Engineer\n\nExperience with Go and distributed systems."

	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	got, err := LoadResume(path)
	if err != nil {
		t.Fatalf("LoadResume() error = %v", err)
	}
	if got != content {
		t.Errorf("LoadResume() = %q, want %q", got, content)
	}
}

func TestLoadResumeMissingFile(t *testing.T) {
	_, err := LoadResume(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Fatal("Expected error for missing resume file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestLoadResumeEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("  \n\t\n"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := LoadResume(path); err == nil {
		t.Error("Expected error for empty resume file")
	}
}
