// Package blobstore keeps uploaded statement files on local disk. Each
// document gets its own directory keyed by document id so filenames from
// different uploads never collide.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes and reads statement files under a base directory.
type Store struct {
	baseDir string
}

// New creates the base directory if needed and returns a Store rooted there.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore.New: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes data under the document's directory and returns the stored
// path. The filename is flattened to its base name so path segments in
// client-supplied names cannot escape the store.
func (s *Store) Save(documentID, filename string, data []byte) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		name = "upload"
	}

	dir := filepath.Join(s.baseDir, documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("Save: %w", err)
	}
	return path, nil
}

// Load reads back a previously stored file.
func (s *Store) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return data, nil
}

// Remove deletes a stored file and its document directory if empty.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	// Best effort; the directory may hold other files.
	_ = os.Remove(filepath.Dir(path))
	return nil
}
