package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// MemoryObject is an object held by MemoryObjectStorage
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in process memory. It is used when no
// bucket is configured (development, tests).
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]MemoryObject
	baseURL string
}

// NewMemoryObjectStorage creates an empty store whose download URLs start with baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost/storage"
	}
	return &MemoryObjectStorage{
		objects: make(map[string]MemoryObject),
		baseURL: baseURL,
	}
}

// Upload stores the whole body under key
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = MemoryObject{Data: buf.Bytes(), ContentType: contentType}
	return nil
}

// GenerateDownloadURL returns a fake URL for an existing object
func (s *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if _, ok := s.Get(key); !ok {
		return "", time.Time{}, fmt.Errorf("object %q not found", key)
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.baseURL + "/" + url.PathEscape(key) + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// DeleteObject removes key; deleting a missing key is not an error
func (s *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns the object stored under key
func (s *MemoryObjectStorage) Get(key string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
