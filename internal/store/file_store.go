package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shiprisk/internal/errors"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create artifacts directory", err).WithContext("dir", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+fileExt)
}

// Save writes the value to a temp file and renames it into place
func (s *FileStore) Save(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to encode %s", key), err)
	}

	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create directory for %s", key), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create temp file for %s", key), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", key), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", key), err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to store %s", key), err)
	}
	return nil
}

// Load reads and decodes the value under key
func (s *FileStore) Load(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewNotFoundError(key).WithContext("key", key)
		}
		return errors.NewStorageError(fmt.Sprintf("failed to read %s", key), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to decode %s", key), err)
	}
	return nil
}

// Keys walks the directory for stored values
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, fileExt) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return err
		}
		keys = append(keys, strings.TrimSuffix(filepath.ToSlash(rel), fileExt))
		return nil
	})
	if err != nil {
		return nil, errors.NewStorageError("failed to list artifacts", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
