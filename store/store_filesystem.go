package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

/* Store sketches on the local filesystem. */
type StoreFilesystem struct {
	root string
}

// NewLocalStore returns a store resolving keys relative to root.
// An empty root resolves keys as plain paths.
func NewLocalStore(root string) *StoreFilesystem {
	return &StoreFilesystem{root}
}

func (s *StoreFilesystem) path(key string) string {
	if s.root == "" {
		return key
	}
	return filepath.Join(s.root, key)
}

func (s *StoreFilesystem) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("file", start, "open", err)
	}(time.Now())
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w", &NotFoundError{key: key})
		}
		return nil, fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
	}
	return f, nil
}

// Put writes to a temporary file next to the destination and renames it into
// place, so an interrupted run never leaves a partial sketch behind.
func (s *StoreFilesystem) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	var err error
	defer func(start time.Time) {
		reportStoreOpMetric("file", start, "put", err)
	}(time.Now())

	path := s.path(key)
	dirname := filepath.Dir(path)
	if err = os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("%w", &AccessError{msg: fmt.Sprintf("%v", err)})
	}
	tmp, err := os.CreateTemp(dirname, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	written, err := io.Copy(tmp, r)
	if err != nil {
		return err
	}
	if size >= 0 && written != size {
		err = fmt.Errorf("short write to %s: wrote %d of %d bytes", path, written, size)
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	err = os.Rename(tmp.Name(), path)
	return err
}
