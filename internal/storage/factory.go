package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"fortress-go/internal/config"
	"fortress-go/internal/database"
	"fortress-go/internal/fortress"
)

// NewStoreFromConfig creates a fortress.Store based on the storage config type.
func NewStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (fortress.Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		if err := ensureDir(cfg.DataDir); err != nil {
			return nil, err
		}
		s, err := database.NewSQLiteStore(filepath.Join(cfg.DataDir, "fortress.db"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem storage requires fs_root to be set")
		}
		s, err := NewFileSystemStore(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		s, err := NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
