package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fortress-go/internal/fortress"
)

// FileSystemStore keeps each key in its own file under root:
//
//	<root>/
//	  fortress_user_auth
//	  fortress_notes_data
//	  theme
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a reader sees either the old or the new value.
type FileSystemStore struct {
	root string
}

var _ fortress.Store = (*FileSystemStore)(nil)

// NewFileSystemStore creates the root directory (mode 0700) if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("store root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store root is not a directory: %s", root)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := fortress.ValidateKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileSystemStore) Set(_ context.Context, key string, value []byte) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	return s.writeFile(filepath.Join(s.root, key), value)
}

func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	if err := fortress.ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *FileSystemStore) Close() error { return nil }

// writeFile writes value to destPath using atomic write (temp file + rename).
// os.CreateTemp creates the file with mode 0600.
func (s *FileSystemStore) writeFile(destPath string, value []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(value); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
