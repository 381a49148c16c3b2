package favorites

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore persists one local favorites profile as a JSON array of
// product ids in a single file, written in full on every toggle.
type FileStore struct {
	path string
	log  *zap.Logger

	mu  sync.Mutex
	ids []int
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}

	s := &FileStore{path: path, log: log}
	s.ids = s.load()
	return s
}

// load is best effort: a missing or corrupt file is an empty set.
func (s *FileStore) load() []int {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("favorites file unreadable, starting empty",
				zap.Error(err), zap.String("path", s.path))
		}
		return nil
	}

	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.log.Warn("favorites file corrupt, starting empty",
			zap.Error(err), zap.String("path", s.path))
		return nil
	}

	seen := make(map[int]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *FileStore) Load(_ context.Context, _ string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

func (s *FileStore) Toggle(_ context.Context, _ string, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]int, 0, len(s.ids)+1)
	removed := false
	for _, v := range s.ids {
		if v == id {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, id)
	}

	if err := s.persist(next); err != nil {
		return false, err
	}

	s.ids = next
	return !removed, nil
}

func (s *FileStore) IsFavorite(_ context.Context, _ string, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.ids {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// persist writes to a sibling temp file and renames it over the
// target, so a crash mid-write cannot corrupt the stored set.
func (s *FileStore) persist(ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
