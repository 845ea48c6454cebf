package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"shiprisk/internal/errors"
)

// BadgerConfig configures the embedded key-value backend
type BadgerConfig struct {
	// Path is the database directory; ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal messages; nil silences them.
	Logger *slog.Logger
}

// BadgerStore keeps artifacts in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog to badger's logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBadger opens or creates the database
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.NewConfigError("badger path is required for a persistent store", nil)
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.NewStorageError("failed to create badger directory", err).WithContext("path", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.NewStorageError("failed to open badger database", err).WithContext("path", cfg.Path)
	}
	return &BadgerStore{db: db}, nil
}

// Save encodes v and writes it in one transaction
func (s *BadgerStore) Save(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to encode %s", key), err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	}); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to store %s", key), err)
	}
	return nil
}

// Load reads the value under key and decodes it into v
func (s *BadgerStore) Load(ctx context.Context, key string, v any) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.NewNotFoundError(key).WithContext("key", key)
	}
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to read %s", key), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to decode %s", key), err)
	}
	return nil
}

// Keys iterates all keys without fetching values
func (s *BadgerStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewStorageError("failed to list artifacts", err)
	}
	return keys, nil
}

// Close releases the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
