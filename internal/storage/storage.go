// Package storage keeps uploaded recipe images in an object store.
package storage

import (
	"context"
	"fmt"

	"github.com/pageza/foodgram/backend/config"
)

// ObjectStore stores blobs under slash-separated keys and resolves their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// New returns the store selected by cfg.Storage.Backend.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return NewLocalStore(cfg.Storage.LocalDir, cfg.Server.BaseURL+cfg.Storage.MediaURL)
	case "s3":
		s3Cfg, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3: %w", err)
		}
		return NewS3Store(s3Cfg.Client, s3Cfg.BucketName, s3Cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
