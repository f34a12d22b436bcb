// Package storage persists uploaded image files on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".webp": true,
	".gif":  true,
	".ico":  true,
}

type FileStore struct {
	dir      string
	maxBytes int64
}

func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save sniffs the content type, and when it is an allowed image format
// writes the file under a random name. The declared filename and
// Content-Type from the client are ignored. Returns the stored filename.
func (s *FileStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("file exceeds %d bytes", s.maxBytes)
	}

	mtype := mimetype.Detect(data)
	ext := mtype.Extension()
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *FileStore) Remove(name string) error {
	// Stored names are always uuid + extension; refuse anything else.
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid stored name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) Dir() string {
	return s.dir
}
