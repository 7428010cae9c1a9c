package jpsplus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExt is the extension of persisted tables.
const FileExt = ".jpsp"

// FileStore persists tables as "<dir>/<mapID>.jpsp" files.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// LoadTable reads the table for mapID. Returns ErrNotFound when no file exists.
func (s *FileStore) LoadTable(_ context.Context, mapID string) (*Table, error) {
	path, err := s.path(mapID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, mapID)
		}
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}

	t, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding table %s: %w", path, err)
	}
	return t, nil
}

// SaveTable writes the table for mapID atomically (temp file + rename).
func (s *FileStore) SaveTable(_ context.Context, mapID string, t *Table) error {
	path, err := s.path(mapID)
	if err != nil {
		return err
	}
	data, err := t.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding table %s: %w", mapID, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating table dir %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, mapID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp table file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing table %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming table %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) path(mapID string) (string, error) {
	if mapID == "" || strings.ContainsAny(mapID, `/\`) || mapID == "." || mapID == ".." {
		return "", fmt.Errorf("invalid map id %q", mapID)
	}
	return filepath.Join(s.dir, mapID+FileExt), nil
}
