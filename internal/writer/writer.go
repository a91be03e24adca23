package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists a JSON document under a file name and reports where it went.
type Writer interface {
	WriteJSON(name string, v any) (string, error)
}

// FileWriter writes compact JSON files into Dir, creating it on demand.
// Existing files are overwritten.
type FileWriter struct {
	Dir string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir}
}

// WriteJSON marshals v and writes it to Dir/name.
func (w *FileWriter) WriteJSON(name string, v any) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// FileName builds "<tag>_<suffix>.json", e.g. "audusd_daily.json".
func FileName(tag, suffix string) string {
	return tag + "_" + suffix + ".json"
}
