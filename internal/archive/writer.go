package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer persists rendered reports into an archive directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting the given archive directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Save writes the rendered report under its canonical date-named file,
// creating the archive directory if needed, and returns the written
// path. Saving the same run date again overwrites the previous file, so
// re-running a day replaces that day's report.
func (w *Writer) Save(runDate time.Time, markdown string) (string, error) {
	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return "", fmt.Errorf("archive: create directory %s: %w", w.dir, err)
	}
	path := filepath.Join(w.dir, FileName(runDate))
	if err := os.WriteFile(path, []byte(markdown), 0600); err != nil {
		return "", fmt.Errorf("archive: write report %s: %w", path, err)
	}
	return path, nil
}
