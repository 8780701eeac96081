package out

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	sessionout "healthdash/internal/modules/session/port/out"
)

// FileKeyValueStore keeps one file per key under dir. Writes go through a
// temp file and rename so a crash never leaves a half-written record.
type FileKeyValueStore struct {
	dir string
}

func NewFileKeyValueStore(stateDir string) sessionout.KeyValueStore {
	return &FileKeyValueStore{dir: filepath.Join(stateDir, "kv")}
}

func (s *FileKeyValueStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

func (s *FileKeyValueStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *FileKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create kv dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *FileKeyValueStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
