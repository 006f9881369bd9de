// mobilecart/storage/storage.go

// Package storage holds the key-value backends the cart is persisted to.
package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/norun9/mobilecart/config"
)

// Storage is an async key-value store holding string values.
// GetItem reports a missing key as ("", false, nil).
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error

	Ping(ctx context.Context) bool
	Close() error
}

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		return NewLocalStorage(), nil
	case config.BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis backend")
		}
		s := NewRedisStorage(cfg.RedisAddress(), WithRedisLogger(log))
		if err := s.Initialize(ctx); err != nil {
			_ = s.Close()
			return nil, errors.Wrap(err, "initialize redis storage")
		}
		return s, nil
	case config.BackendSQLite:
		s, err := OpenSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
