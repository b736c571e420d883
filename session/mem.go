package session

import "sync"

// memStorage is a map-backed Storage, safe for concurrent use.
type memStorage struct {
	items map[string]string
	mu    sync.RWMutex
}

// NewMemStorage returns an empty in-memory session store.
func NewMemStorage() Storage {
	return &memStorage{items: make(map[string]string)}
}

func (s *memStorage) GetItem(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok
}

func (s *memStorage) SetItem(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}
