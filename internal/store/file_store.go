package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore keeps one JSON document per collection in a directory.
// Writes go to a temp file that is renamed over the target, so readers never see a partial file.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	locks map[Collection]*sync.RWMutex
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create data directory %s", dir)
	}
	return &FileStore{dir: dir, locks: make(map[Collection]*sync.RWMutex)}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *FileStore) lock(c Collection) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[c]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[c] = l
	}
	return l
}

// Read returns the stored document, or ErrNotExist.
func (s *FileStore) Read(ctx context.Context, c Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := s.lock(c)
	l.RLock()
	defer l.RUnlock()

	data, err := os.ReadFile(s.path(c))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read collection %s", c)
	}
	return data, nil
}

// Write atomically replaces the stored document.
func (s *FileStore) Write(ctx context.Context, c Collection, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := s.lock(c)
	l.Lock()
	defer l.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+string(c)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", c)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "failed to write collection %s", c)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "failed to sync collection %s", c)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to close collection %s", c)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to chmod collection %s", c)
	}
	if err := os.Rename(tmpName, s.path(c)); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to replace collection %s", c)
	}
	return nil
}

// Ping checks that the data directory is usable.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return errors.Wrap(err, "data directory unavailable")
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
