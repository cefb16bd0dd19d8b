package storage

import (
	"context"
	"fmt"
	"os"

	"fortress-go/internal/fortress"
)

// Copy copies keys from src to dst as stored, without decrypting anything.
// Keys absent in src are skipped. It returns the keys that were copied.
func Copy(ctx context.Context, src, dst fortress.Store, keys ...string) ([]string, error) {
	var copied []string
	for _, key := range keys {
		value, ok, err := src.Get(ctx, key)
		if err != nil {
			return copied, fmt.Errorf("reading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := dst.Set(ctx, key, value); err != nil {
			return copied, fmt.Errorf("writing %s: %w", key, err)
		}
		copied = append(copied, key)
	}
	return copied, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
