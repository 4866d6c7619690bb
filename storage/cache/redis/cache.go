package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
)

const keyPrefix = "portal:cache:"

// Cache is a Redis-backed core.Cache.
type Cache struct {
	client *redis.Client
}

var _ core.Cache = (*Cache)(nil)

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "fetching cache entry")
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrap(err, "unmarshaling cache entry")
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "marshaling cache entry")
	}
	return errors.Wrap(c.client.Set(ctx, keyPrefix+key, data, ttl).Err(), "storing cache entry")
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, keyPrefix+k)
	}
	return errors.Wrap(c.client.Del(ctx, prefixed...).Err(), "deleting cache entries")
}

func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, "deleting cache entry")
		}
	}
	return errors.Wrap(iter.Err(), "scanning cache entries")
}
