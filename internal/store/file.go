package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

const fileExt = ".wsnap"

// FileStore keeps one file per snapshot in a directory. Writes go through a
// temporary file and a rename so a reader never sees a partial snapshot.
type FileStore struct {
	dir    string
	closed atomic.Bool
}

var _ SnapshotStore = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create snapshot dir %s", dir)
	}
	return &FileStore{dir: filepath.Clean(dir)}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

func (s *FileStore) check(ctx context.Context, name string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ValidateName(name)
}

func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.check(ctx, name); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return eris.Wrapf(err, "create temp file for %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "write snapshot %s", name)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "sync snapshot %s", name)
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrapf(err, "close snapshot %s", name)
	}
	if err = os.Rename(tmp.Name(), s.path(name)); err != nil {
		return eris.Wrapf(err, "rename snapshot %s", name)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.check(ctx, name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read snapshot %s", name)
	}
	return data, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := s.check(ctx, name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return eris.Wrapf(err, "delete snapshot %s", name)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "list snapshot dir %s", s.dir)
	}
	out := make([]Info, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		fi, err := entry.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, eris.Wrapf(err, "stat snapshot %s", name)
		}
		out = append(out, Info{
			Name:      strings.TrimSuffix(name, fileExt),
			Size:      fi.Size(),
			UpdatedAt: fi.ModTime().UTC(),
		})
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Close() error {
	s.closed.Store(true)
	return nil
}
