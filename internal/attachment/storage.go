package attachment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BlobStorage abstracts the attachment blob store. The production
// implementation writes to a local directory tree; the interface keeps the
// service testable and leaves room for an object store later.
type BlobStorage interface {
	Put(key string, contentType string, r io.Reader) error
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// DiskStorage stores blobs under <basePath>/<bucket>/<key>. The bucket
// directory must exist; a missing bucket surfaces as a translatable error.
type DiskStorage struct {
	basePath string
	bucket   string
}

func NewDiskStorage(basePath, bucket string) *DiskStorage {
	return &DiskStorage{
		basePath: basePath,
		bucket:   bucket,
	}
}

func (s *DiskStorage) bucketDir() string {
	return filepath.Join(s.basePath, s.bucket)
}

func (s *DiskStorage) keyPath(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.bucketDir(), cleaned), nil
}

func (s *DiskStorage) Put(key string, contentType string, r io.Reader) error {
	if _, err := os.Stat(s.bucketDir()); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("Bucket not found: %s", s.bucket)
		}
		return err
	}

	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (s *DiskStorage) Get(key string) (io.ReadCloser, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *DiskStorage) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
