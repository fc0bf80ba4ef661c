package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes report files.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteBytes writes data to path, creating parent directories.
func (w *Writer) WriteBytes(path string, data []byte) error {
	if err := w.ensureDir(path); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (w *Writer) ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
