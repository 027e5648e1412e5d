// Package storage keeps uploaded document payloads on disk, keyed by file id.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type DocumentStore struct {
	root string
}

func NewDocumentStore(root string) (*DocumentStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DocumentStore{root: root}, nil
}

func (s *DocumentStore) Save(fileID string, r io.Reader) (int64, error) {
	f, err := os.Create(s.path(fileID))
	if err != nil {
		return 0, fmt.Errorf("failed to create document %s: %w", fileID, err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(f.Name())
		return 0, fmt.Errorf("failed to write document %s: %w", fileID, err)
	}
	return n, nil
}

func (s *DocumentStore) Open(fileID string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(fileID))
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", fileID, err)
	}
	return f, nil
}

func (s *DocumentStore) Remove(fileID string) error {
	err := os.Remove(s.path(fileID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove document %s: %w", fileID, err)
	}
	return nil
}

func (s *DocumentStore) path(fileID string) string {
	// File ids are UUIDs generated by this process, never request paths.
	return filepath.Join(s.root, filepath.Base(fileID))
}
