package storage

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"
)

// StubObjectStorage keeps objects in memory. It backs local development and
// tests where no S3 endpoint is available.
type StubObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL   string
	KeyPrefix string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is an object held by StubObjectStorage
type StoredObject struct {
	Data        []byte
	ContentType string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]StoredObject),
	}
}

// ObjectKey prefixes name with KeyPrefix
func (s *StubObjectStorage) ObjectKey(name string) string {
	prefix := strings.Trim(s.KeyPrefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Upload stores a copy of data under key
func (s *StubObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = make(map[string]StoredObject)
	}
	s.objects[key] = StoredObject{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
	}
	return nil
}

// GenerateDownloadURL returns a fake download URL carrying the expiry
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expiresIn)
	u := strings.TrimRight(s.BaseURL, "/") + "/download/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return u, expiresAt, nil
}

// DeleteObject removes key. Missing keys are not an error.
func (s *StubObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored object under key
func (s *StubObjectStorage) Object(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
