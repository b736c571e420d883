package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// diskReceiptStore writes receipts under a base directory, one subdirectory
// per key, keeping the original filename inside it.
type diskReceiptStore struct {
	baseDir string
}

// NewDiskReceiptStore creates the base directory if needed and returns a
// disk-backed ReceiptStore. Served URLs take the form /receipts/<key>.
func NewDiskReceiptStore(baseDir string) (ReceiptStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", baseDir, err)
	}
	return &diskReceiptStore{baseDir: baseDir}, nil
}

func (s *diskReceiptStore) Save(fileName string, content io.Reader) (Receipt, error) {
	key := uuid.New().String()

	// filepath.Base strips any path the client smuggled into the filename.
	safeName := filepath.Base(fileName)
	dir := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("failed to create receipt directory: %w", err)
	}

	dest, err := os.Create(filepath.Join(dir, safeName))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, content); err != nil {
		_ = os.RemoveAll(dir)
		return Receipt{}, fmt.Errorf("failed to save receipt content: %w", err)
	}

	return Receipt{Key: key, URL: "/receipts/" + key}, nil
}

func (s *diskReceiptStore) Open(key string) (io.ReadCloser, string, error) {
	// The key is a UUID we generated; reject anything path-like.
	if _, err := uuid.Parse(key); err != nil {
		return nil, "", fmt.Errorf("invalid receipt key %q", key)
	}

	dir := filepath.Join(s.baseDir, key)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", fmt.Errorf("receipt %s not found: %w", key, err)
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("receipt %s is empty", key)
	}

	name := entries[0].Name()
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open receipt %s: %w", key, err)
	}
	return f, name, nil
}
