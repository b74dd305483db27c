package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// ProcessedStore tracks message IDs that have already been handled, so a
// restart never reprocesses old direct messages. State is a JSON array of
// IDs on disk, rewritten atomically on every update.
type ProcessedStore struct {
	path string

	mu  sync.Mutex
	ids map[string]bool
}

func NewProcessedStore(path string) (*ProcessedStore, error) {
	s := &ProcessedStore{
		path: path,
		ids:  make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ProcessedStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt state file starts us fresh rather than wedging the
		// monitor.
		return nil
	}
	for _, id := range ids {
		s.ids[id] = true
	}
	return nil
}

// Contains reports whether the message ID was already handled.
func (s *ProcessedStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

// Mark records the ID and persists the full set. Write-then-rename keeps
// the file valid even if the process dies mid-write.
func (s *ProcessedStore) Mark(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[id] {
		return nil
	}
	s.ids[id] = true

	ids := make([]string, 0, len(s.ids))
	for k := range s.ids {
		ids = append(ids, k)
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".processed-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Len returns how many IDs are tracked.
func (s *ProcessedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
