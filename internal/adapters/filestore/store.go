// Package filestore keeps uploaded documents on an afero filesystem.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Store implements the intake FileStorage port.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// New creates a Store over fs. Returned URLs are baseURL joined with the stored path.
func New(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewOS stores files below root on the local disk.
func NewOS(root string) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root), "file://"+root)
}

// NewMemory keeps files in process memory.
func NewMemory() *Store {
	return New(afero.NewMemMapFs(), "mem://documents")
}

func cleanPath(bucket, name string) (string, error) {
	p := path.Clean(path.Join("/", bucket, name))
	if bucket == "" || name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid storage path %q/%q", bucket, name)
	}
	return strings.TrimPrefix(p, "/"), nil
}

// Upload writes data to bucket/name, creating directories as needed.
func (s *Store) Upload(ctx context.Context, data []byte, bucket, name string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	p, err := cleanPath(bucket, name)
	if err != nil {
		return "", "", err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return "", "", fmt.Errorf("create directory for %s: %w", p, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, s.baseURL + "/" + p, nil
}

// Download reads a file previously returned by Upload.
func (s *Store) Download(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s not found: %w", p, err)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}
