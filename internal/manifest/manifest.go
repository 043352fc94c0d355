// Package manifest records per-page outcomes as an append-only JSONL log.
package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is the durable projection of one page's full outcome.
type Entry struct {
	PageIndex    int     `json:"page_index"`
	RawPath      string  `json:"raw_path"`
	EnhancedPath *string `json:"enhanced_path"`
	Status       string  `json:"status"`
	DurationMS   int64   `json:"duration_ms"`
	Error        *string `json:"error"`
}

// Writer appends entries to a JSONL manifest file. The file is append-only
// across runs: prior entries are never rewritten or deduplicated.
type Writer struct {
	path string
}

// NewWriter creates a writer for the given manifest path, creating parent
// directories as needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}
	return &Writer{path: path}, nil
}

// Path returns the manifest file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one entry as a single JSON line.
func (w *Writer) Append(entry Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal manifest entry: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append manifest entry: %w", err)
	}
	return nil
}

// Read parses a manifest file back into entries, skipping blank lines.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("parse manifest line: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return entries, nil
}
