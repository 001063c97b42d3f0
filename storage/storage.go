// Package storage is the object-store boundary. The sale core only sees
// the ObjectStore interface and treats returned URLs as opaque.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey signals a key that escapes the store's namespace.
var ErrInvalidKey = errors.New("storage: invalid key")

// ObjectStore persists a binary blob under a logical key and returns a
// publicly resolvable URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// DiskStore is a filesystem-backed ObjectStore. Files land under Root and
// are served by the API binary under BaseURL.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *DiskStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean = strings.TrimPrefix(clean, "/")

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: create %s: %w", clean, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: close %s: %w", clean, err)
	}

	return s.baseURL + "/" + clean, nil
}
