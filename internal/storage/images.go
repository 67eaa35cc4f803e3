package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImageStore keeps downloaded product images in a single flat directory.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// EnsureDir creates the directory; an existing one is left alone.
func (s *ImageStore) EnsureDir() error {
	return os.MkdirAll(s.dir, 0755)
}

// WriteImage stores data under filename, replacing any earlier file of the
// same name.
func (s *ImageStore) WriteImage(filename string, data []byte) error {
	if filename == "" || filename != filepath.Base(filename) {
		return fmt.Errorf("invalid image filename %q", filename)
	}
	return writeFileAtomic(filepath.Join(s.dir, filename), data)
}
