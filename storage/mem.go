package storage

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

type memReceipt struct {
	name    string
	content []byte
}

// memReceiptStore keeps receipts in memory; used by tests and the dev server.
type memReceiptStore struct {
	receipts map[string]memReceipt
	mu       sync.RWMutex
}

// NewMemReceiptStore returns an in-memory ReceiptStore.
func NewMemReceiptStore() ReceiptStore {
	return &memReceiptStore{receipts: make(map[string]memReceipt)}
}

func (s *memReceiptStore) Save(fileName string, content io.Reader) (Receipt, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read receipt content: %w", err)
	}

	key := uuid.New().String()

	s.mu.Lock()
	s.receipts[key] = memReceipt{name: fileName, content: data}
	s.mu.Unlock()

	return Receipt{Key: key, URL: "/receipts/" + key}, nil
}

func (s *memReceiptStore) Open(key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	r, exists := s.receipts[key]
	s.mu.RUnlock()

	if !exists {
		return nil, "", fmt.Errorf("receipt %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(r.content)), r.name, nil
}
