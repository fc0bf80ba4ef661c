package deployment

import (
	"encoding/json"
	"fmt"
	"os"
)

// Reader loads deployment records from disk.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadJSON reads and unmarshals JSON from a file.
func (r *Reader) ReadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// ReadRecord reads a deploy.json file.
func (r *Reader) ReadRecord(path string) (*Record, error) {
	var record Record
	if err := r.ReadJSON(path, &record); err != nil {
		return nil, fmt.Errorf("failed to load deployment record %s: %w", path, err)
	}
	return &record, nil
}
