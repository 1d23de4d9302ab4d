package memstore

import (
	"sync"

	"github.com/sidereusnuntius/goblog/internal/storage"
)

// MemStore is a Storage that lives only as long as the process.
type MemStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func New() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, storage.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return append([]byte(nil), v...), nil
}

func (s *MemStore) Set(key string, value []byte) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) Clear(key string) error {
	if key == "" {
		return storage.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return storage.ErrNotExist
	}
	delete(s.values, key)
	return nil
}
