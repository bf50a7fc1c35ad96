package groundtruth

import "context"

// MemoryStore is a literal in-memory ground-truth mapping, used by tests and
// for embedded fixtures.
type MemoryStore struct {
	entries map[string]string
}

// NewMemoryStore copies the given mapping into an immutable store.
func NewMemoryStore(entries map[string]string) *MemoryStore {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &MemoryStore{entries: copied}
}

// Lookup returns the canonical JSON for documentID. Misses are not errors.
func (s *MemoryStore) Lookup(_ context.Context, documentID string) (string, bool, error) {
	gt, ok := s.entries[documentID]
	return gt, ok, nil
}
