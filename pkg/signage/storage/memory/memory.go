// Package memory provides an in-memory signage.MediaStore.
package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// Store is an in-memory implementation of the signage.MediaStore interface
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory media store
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

func (s *Store) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = data
	return nil
}

func (s *Store) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Delete(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[objectKey]; !exists {
		return errors.New("object not found")
	}
	delete(s.objects, objectKey)
	return nil
}
