// Package fs provides a filesystem-backed signage.MediaStore.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Directory under which objects are stored
}

// Store is a filesystem implementation of the signage.MediaStore interface
type Store struct {
	baseDir string
}

// New creates a new filesystem media store rooted at cfg.BaseDir
func New(cfg Config) (*Store, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Store{baseDir: cfg.BaseDir}, nil
}

func (s *Store) path(objectKey string) (string, error) {
	clean := filepath.Clean(objectKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *Store) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	path, err := s.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("write object file: %w", err)
	}
	return nil
}

func (s *Store) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	path, err := s.path(objectKey)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("object not found")
		}
		return nil, fmt.Errorf("open object file: %w", err)
	}
	return f, nil
}

func (s *Store) Delete(ctx context.Context, objectKey string) error {
	path, err := s.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("remove object file: %w", err)
	}
	return nil
}
