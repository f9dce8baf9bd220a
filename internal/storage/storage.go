package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage keeps uploaded media and hands out public URLs for it.
type Storage interface {
	// Save stores the content of reader under key.
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public address of key.
	URL(key string) string
}

type Config struct {
	Type      string // local, s3
	BasePath  string // local
	BaseURL   string // public URL prefix
	Bucket    string // s3
	Region    string // s3
	AccessKey string // s3
	SecretKey string // s3
	Endpoint  string // S3-compatible endpoint (R2, MinIO); empty for AWS
}

func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// cleanKey normalizes key and rejects anything that escapes the root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(key, "..") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
