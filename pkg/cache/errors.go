package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/matzehuels/archlog/pkg/observability"
)

// ErrCacheMiss is returned by [GetJSON] when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// GetJSON reads key from c and decodes it into v.
// It returns [ErrCacheMiss] on a miss or when the stored bytes do not decode,
// so callers can treat a corrupt entry like an absent one.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return ErrCacheMiss
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
