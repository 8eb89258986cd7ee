// Package cache is a small key/value store with TTLs. Redis backs it in
// deployment; Memory covers tests and single-process runs without Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Store is implemented by *Redis and *Memory.
type Store interface {
	// Get unmarshals the value at key into dest and reports a hit.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

func encode(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

func decode(data []byte, dest interface{}) error {
	if dest == nil {
		return nil
	}
	return json.Unmarshal(data, dest)
}
