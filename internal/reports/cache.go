package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cachePrefix     = "kpir:reports"
	invalidateTopic = "kpir:reports:bump"
)

// Cache stores built report data in Redis. Every company has its own version
// counter; bumping it orphans all keys built from the previous ledger state.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(companyID int64) string {
	return cachePrefix + ":version:" + strconv.FormatInt(companyID, 10)
}

// Version returns the company's cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context, companyID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := versionKey(companyID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a versioned cache key for the company.
func (c *Cache) BuildKey(ctx context.Context, companyID int64, parts ...string) (string, error) {
	base := cachePrefix + ":" + strconv.FormatInt(companyID, 10) + ":" + strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return base, nil
	}
	ver, err := c.Version(ctx, companyID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", base, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("reports: cache loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate bumps the company's version and announces it to other
// instances.
func (c *Cache) Invalidate(ctx context.Context, companyID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	key := versionKey(companyID)
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// Missing versions read as 1, so the bump must start from there.
		pipe.SetNX(ctx, key, 1, 0)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return err
	}
	ver := incr.Val()
	msg := strconv.FormatInt(companyID, 10) + ":" + strconv.FormatInt(ver, 10)
	return c.client.Publish(ctx, invalidateTopic, msg).Err()
}

// Subscribe delivers the company id of every invalidation until ctx ends.
func (c *Cache) Subscribe(ctx context.Context, fn func(companyID int64)) error {
	if c == nil || c.client == nil || fn == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, invalidateTopic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				company, _, _ := strings.Cut(msg.Payload, ":")
				if id, err := strconv.ParseInt(company, 10, 64); err == nil {
					fn(id)
				}
			}
		}
	}()
	return nil
}
