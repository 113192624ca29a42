package checkpointer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore stores each snapshot in its own file below a directory
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is
// created on the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file holding the snapshot stored under key
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, filepath.FromSlash(key)+".gob")
}

// Load implements the Store interface
func (f *FileStore) Load(_ context.Context, key string,
	obj Serializable) (bool, error) {
	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}

	if err := obj.GobDecode(data); err != nil {
		return false, fmt.Errorf("load: %v: %w", key, err)
	}
	return true, nil
}

// Delete implements the Store interface
func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Save implements the Store interface. The snapshot is written to a
// temporary file which then replaces any previous snapshot.
func (f *FileStore) Save(_ context.Context, key string,
	obj Serializable) error {
	data, err := obj.GobEncode()
	if err != nil {
		return fmt.Errorf("save: %v: %w", key, err)
	}

	path := f.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
