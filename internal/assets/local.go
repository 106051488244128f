package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes assets below a directory that the API serves statically.
type LocalStore struct {
	basePath string
	baseURL  string
}

func NewLocalStore(cfg Config) (*LocalStore, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "./media"
	}

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	return &LocalStore{
		basePath: cfg.BasePath,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (s *LocalStore) Put(ctx context.Context, obj Object) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}

	name := objectName(obj)
	fullPath, err := s.path(name)
	if err != nil {
		return Asset{}, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return Asset{}, fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial asset.
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, obj.Data, 0644); err != nil {
		return Asset{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return Asset{}, fmt.Errorf("failed to write file: %w", err)
	}

	return Asset{ID: name, Kind: obj.Kind, URL: s.baseURL + "/" + name}, nil
}

func (s *LocalStore) Delete(ctx context.Context, asset Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := s.path(asset.ID)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalStore) path(name string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return fullPath, nil
}
