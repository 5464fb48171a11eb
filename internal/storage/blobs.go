package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a blob key has no stored content.
var ErrNotFound = errors.New("blob not found")

var keyPattern = regexp.MustCompile(`^[0-9a-f]{2}/[0-9a-f-]{36}$`)

// BlobStore keeps uploaded files on local disk, sharded by the first two
// characters of a random key.
type BlobStore struct {
	Dir string
}

// NewBlobStore creates the base directory if needed.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &BlobStore{Dir: dir}, nil
}

// Put stores the content of r and returns its key and size.
func (s *BlobStore) Put(r io.Reader) (string, int64, error) {
	id := uuid.NewString()
	key := id[:2] + "/" + id

	dir := filepath.Join(s.Dir, id[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create blob dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, id))
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, id))
		return "", 0, fmt.Errorf("write blob: %w", err)
	}

	return key, size, nil
}

// PutBytes stores b and returns its key.
func (s *BlobStore) PutBytes(b []byte) (string, error) {
	key, _, err := s.Put(bytes.NewReader(b))
	return key, err
}

// Open returns a reader for the blob stored under key.
func (s *BlobStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// ReadAll returns the full content of a blob.
func (s *BlobStore) ReadAll(key string) ([]byte, error) {
	rc, err := s.Open(key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Remove deletes a blob. Missing blobs are not an error.
func (s *BlobStore) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Writable checks that the store directory accepts new files.
func (s *BlobStore) Writable() error {
	f, err := os.CreateTemp(s.Dir, ".writecheck-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func (s *BlobStore) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrNotFound
	}
	return filepath.Join(s.Dir, filepath.FromSlash(key)), nil
}
