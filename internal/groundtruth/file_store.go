package groundtruth

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// FileStore serves ground truths from a directory of <document-id>.json
// files. The directory is read once at construction; the store is immutable
// and safe for concurrent reads afterwards.
type FileStore struct {
	entries map[string]string
}

// NewFileStore loads every .json file under dir. The document identifier is
// the file name with the trailing .json stripped, so "CIF-Good.png.json"
// serves the document "CIF-Good.png".
func NewFileStore(dir string) (*FileStore, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth dir: %w", err)
	}

	entries := make(map[string]string)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading ground truth %s: %w", f.Name(), err)
		}
		id := strings.TrimSuffix(f.Name(), ".json")
		entries[id] = string(data)
	}

	log.Printf("groundtruth.FileStore: loaded %d ground truths from %s", len(entries), dir)
	return &FileStore{entries: entries}, nil
}

// Lookup returns the canonical JSON for documentID. Misses are not errors.
func (s *FileStore) Lookup(_ context.Context, documentID string) (string, bool, error) {
	gt, ok := s.entries[documentID]
	return gt, ok, nil
}

// Len reports how many ground truths are loaded.
func (s *FileStore) Len() int {
	return len(s.entries)
}
