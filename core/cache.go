package core

import (
	"context"
	"time"
)

// Cache is a read-through query cache re-expressing the frontend's
// client-side query cache: listings are cached under namespaced keys and
// every mutation invalidates its collection prefix. A failing cache must
// degrade to direct platform calls, never fail the request.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
