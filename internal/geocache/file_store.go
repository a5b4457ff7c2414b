package geocache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ssbor/jobmap/internal/entities"
)

// FileStore keeps the whole cache as one JSON blob on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (map[string]*entities.Coordinate, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*entities.Coordinate{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]*entities.Coordinate{}, nil
	}

	var entries map[string]*entities.Coordinate
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) Save(entries map[string]*entities.Coordinate) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o644)
}
