// Package cache is an optional redis backed cache. Without a configured
// address every operation is a no-op and lookups always miss.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Keys
const (
	KeyLicenseVerification = "license"
)

// Config configures the redis connection
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Cache stores msgpack encoded values in redis
type Cache struct {
	client *redis.Client
	prefix string
}

// New creates a Cache. If no address is configured the Cache is disabled.
func New(ctx context.Context, conf Config) (*Cache, error) {
	if conf.Addr == "" {
		return &Cache{}, nil
	}
	client := redis.NewClient(
		&redis.Options{
			Addr:     conf.Addr,
			Username: conf.Username,
			Password: conf.Password,
			DB:       conf.DB,
		},
	)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "could not connect to redis")
	}
	prefix := conf.Prefix
	if prefix == "" {
		prefix = "certhouse"
	}
	return &Cache{
		client: client,
		prefix: prefix,
	}, nil
}

// Enabled reports whether the cache is backed by redis
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key builds a cache key from the key type and its identifiers
func Key(keyType string, ids ...string) string {
	key := keyType
	for _, id := range ids {
		key += ":" + id
	}
	return key
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// Get decodes the value stored at key into out and reports whether there was
// one
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Wrap(err, "cache get failed")
	}
	if err = msgpack.Unmarshal(data, out); err != nil {
		return false, errors.Wrap(err, "could not decode cached value")
	}
	return true, nil
}

// Set stores v at key for ttl
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "could not encode value for cache")
	}
	return errors.Wrap(c.client.Set(ctx, c.key(key), data, ttl).Err(), "cache set failed")
}

// Delete removes key
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, c.key(key)).Err(), "cache delete failed")
}

// Close closes the redis connection
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
