// Package store persists pipeline artifacts between phases under fixed keys.
// Values are JSON encoded; there is no versioning or migration.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"shiprisk/internal/config"
	"shiprisk/internal/errors"
)

// Artifact keys
const (
	KeyCleanDataset = "dataset/clean"
	KeyPartitions   = "dataset/partitions"
	KeyModel        = "model/fitted"
	KeyReport       = "report/latest"
)

// Store is a keyed persisted-object store.
type Store interface {
	// Save encodes v and stores it under key, replacing any previous value.
	Save(ctx context.Context, key string, v any) error
	// Load decodes the value under key into v. A missing key is a NotFound error.
	Load(ctx context.Context, key string, v any) error
	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open creates the store selected by cfg. File stores live in artifactsDir.
func Open(cfg config.StoreConfig, artifactsDir string, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StoreBackendFile, "":
		return NewFileStore(artifactsDir)
	case config.StoreBackendBadger:
		return OpenBadger(BadgerConfig{
			Path:       cfg.BadgerPath,
			SyncWrites: cfg.SyncWrites,
			Logger:     logger,
		})
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown store backend %q", cfg.Backend), nil)
	}
}

// validateKey rejects keys that would escape the store namespace
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.Contains(key, "..") {
		return errors.NewStorageError(fmt.Sprintf("invalid key %q", key), nil)
	}
	return nil
}
