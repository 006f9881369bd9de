// mobilecart/storage/redis_storage.go

package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultRedisNamespace   = "mobilecart:storage"
	defaultRedisMaxAttempts = 30
	maxRedisBackoff         = 30 * time.Second
)

// RedisStorage keeps values as fields of a single Redis hash.
type RedisStorage struct {
	client      *redis.Client
	namespace   string
	maxAttempts int
	baseBackoff time.Duration
	log         logrus.FieldLogger
}

// RedisOption configures a RedisStorage.
type RedisOption func(*RedisStorage)

// WithNamespace sets the hash the values are stored in.
func WithNamespace(ns string) RedisOption {
	return func(r *RedisStorage) { r.namespace = ns }
}

// WithRedisLogger sets the logger used for connection diagnostics.
func WithRedisLogger(log logrus.FieldLogger) RedisOption {
	return func(r *RedisStorage) {
		if log != nil {
			r.log = log
		}
	}
}

// WithConnectRetry bounds the Ping attempts made by Initialize.
func WithConnectRetry(attempts int, base time.Duration) RedisOption {
	return func(r *RedisStorage) {
		r.maxAttempts = attempts
		r.baseBackoff = base
	}
}

// NewRedisStorage accepts a "redis://" URL or a plain "host:port" address.
func NewRedisStorage(redisAddr string, opts ...RedisOption) *RedisStorage {
	ropts, err := redis.ParseURL(redisAddr)
	if err != nil {
		// Not a redis:// URL, use it as the address.
		ropts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  30 * time.Second,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}

	client := redis.NewClient(ropts)
	client.AddHook(redisotel.NewTracingHook())

	r := &RedisStorage{
		client:      client,
		namespace:   defaultRedisNamespace,
		maxAttempts: defaultRedisMaxAttempts,
		baseBackoff: time.Second,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Storage = (*RedisStorage)(nil)

// Initialize waits for Redis to answer a Ping, backing off exponentially.
func (r *RedisStorage) Initialize(ctx context.Context) error {
	r.log.Info("RedisStorage: initializing connection")

	for i := 0; i < r.maxAttempts; i++ {
		if r.Ping(ctx) {
			r.log.WithField("attempt", i+1).Info("RedisStorage: connected")
			return nil
		}

		backoff := r.baseBackoff * time.Duration(1<<uint(i))
		if backoff > maxRedisBackoff || backoff <= 0 {
			backoff = maxRedisBackoff
		}
		r.log.WithFields(logrus.Fields{
			"attempt": i + 1,
			"backoff": backoff,
		}).Warn("RedisStorage: ping failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("failed to connect to Redis after %d attempts", r.maxAttempts)
}

// GetItem reads a field of the namespace hash.
func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.HGet(ctx, r.namespace, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "redis HGet")
	}
	return val, true, nil
}

// SetItem writes a field of the namespace hash.
func (r *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := r.client.HSet(ctx, r.namespace, key, value).Err(); err != nil {
		return errors.Wrap(err, "redis HSet")
	}
	return nil
}

// RemoveItem deletes a field of the namespace hash.
func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.HDel(ctx, r.namespace, key).Err(); err != nil {
		return errors.Wrap(err, "redis HDel")
	}
	return nil
}

// Ping checks Redis is alive within five seconds.
func (r *RedisStorage) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		r.log.WithError(err).Debug("RedisStorage: ping failed")
		return false
	}
	return true
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
