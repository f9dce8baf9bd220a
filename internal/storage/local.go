package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	defaultLocalPath = "./uploads"
	defaultLocalURL  = "/files"
)

// LocalStorage keeps media on disk under root. The router serves root at
// baseURL when baseURL is a path.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	s := &LocalStorage{root: cfg.BasePath, baseURL: cfg.BaseURL}
	if s.root == "" {
		s.root = defaultLocalPath
	}
	if s.baseURL == "" {
		s.baseURL = defaultLocalURL
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return s, nil
}

func (s *LocalStorage) BasePath() string { return s.root }

func (s *LocalStorage) URL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *LocalStorage) resolve(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Save never leaves a partially written file at key.
func (s *LocalStorage) Save(ctx context.Context, key string, reader io.Reader, _ string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAtomic(target, reader)
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	target, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// writeAtomic copies r into a temp file next to target and renames it into
// place.
func writeAtomic(target string, r io.Reader) (err error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move %s into place: %w", target, err)
	}
	return nil
}
