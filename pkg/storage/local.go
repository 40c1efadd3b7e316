package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded media and returns a URI the API can hand back
// to clients.
type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
}

// LocalStore implements FileStore on the local filesystem. Stored files are
// served under baseURL by the HTTP layer.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the upload directory if it does not exist
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: "/uploads"}, nil
}

// Save writes the uploaded content under a fresh random name, keeping the
// original extension, and returns the serving URI.
func (s *LocalStore) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.baseURL + "/" + name, nil
}
