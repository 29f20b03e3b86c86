package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryObjectStorage keeps blobs in process memory. It stands in for S3
// in development and tests; download URLs it mints are not resolvable.
type MemoryObjectStorage struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	contentTypes  map[string]string
	presignExpiry time.Duration
}

// NewMemoryObjectStorage creates an empty in-memory object store
func NewMemoryObjectStorage(presignExpiry time.Duration) *MemoryObjectStorage {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &MemoryObjectStorage{
		objects:       make(map[string][]byte),
		contentTypes:  make(map[string]string),
		presignExpiry: presignExpiry,
	}
}

// Upload stores a copy of the blob under the storage key
func (s *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return fmt.Errorf("storage: key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = buf
	s.contentTypes[storageKey] = contentType
	return nil
}

// DownloadURL returns a placeholder URL with the configured expiry
func (s *MemoryObjectStorage) DownloadURL(_ context.Context, storageKey string) (string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[storageKey]; !ok {
		return "", time.Time{}, fmt.Errorf("storage: object %q not found", storageKey)
	}
	return "memory://" + storageKey, time.Now().Add(s.presignExpiry), nil
}

// Delete removes the blob; deleting a missing key is not an error
func (s *MemoryObjectStorage) Delete(_ context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	delete(s.contentTypes, storageKey)
	return nil
}

// Exists reports whether a blob is stored under the key
func (s *MemoryObjectStorage) Exists(_ context.Context, storageKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Get returns the stored blob, for tests
func (s *MemoryObjectStorage) Get(storageKey string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[storageKey]
	return data, ok
}
