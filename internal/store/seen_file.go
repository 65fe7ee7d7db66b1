package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/michaelzh/mnews/internal/logger"
)

type seenFile struct {
	Seen []string `json:"seen"`
}

// FileStore keeps the seen set in a small JSON document of the form
// {"seen": [sorted keys]}.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the seen set. A missing or unreadable file starts empty.
func (s *FileStore) Load() (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("seen file unreadable, starting empty", "path", s.path, "error", err)
		}
		return seen, nil
	}

	var doc seenFile
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("seen file corrupt, starting empty", "path", s.path, "error", err)
		return seen, nil
	}

	for _, key := range doc.Seen {
		if key != "" {
			seen[key] = struct{}{}
		}
	}
	return seen, nil
}

// Save overwrites the file with the sorted key list.
func (s *FileStore) Save(seen map[string]struct{}) error {
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	data, err := json.MarshalIndent(seenFile{Seen: keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen set: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write seen file: %w", err)
	}
	return nil
}
