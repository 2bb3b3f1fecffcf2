package interview

import (
	"fmt"
	"os"
	"strings"
)

// DefaultResumePath is the fixed location of the resume file, relative to
// the process working directory.
const DefaultResumePath = "resume.txt"

// LoadResume reads the candidate's resume from disk. The interview cannot
// proceed without it, so callers treat any error as fatal.
func LoadResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("resume file %s is empty", path)
	}

	return text, nil
}
