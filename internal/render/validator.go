package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDocumentNotFound indicates the input document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// ValidateDocumentPath checks that path names a readable PDF before any
// work starts.
func ValidateDocumentPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrDocumentNotFound)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return fmt.Errorf("cannot access document %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a document: %s", path)
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("document is not a PDF (has extension %q): %s", ext, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open document %s: %w", path, err)
	}
	file.Close()

	return nil
}
