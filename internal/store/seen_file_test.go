package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	s := NewFileStore(path)

	seen := map[string]struct{}{
		"https://e.com/b": {},
		"https://e.com/a": {},
	}
	require.NoError(t, s.Save(seen))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, seen, loaded)

	// Keys are persisted sorted for stable diffs.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Seen []string `json:"seen"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"https://e.com/a", "https://e.com/b"}, doc.Seen)
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0644))

	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStore_WrongShapeStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seen": "not a list"}`), 0644))

	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
