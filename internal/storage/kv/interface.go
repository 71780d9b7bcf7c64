// Package kv is the key/value persistence substrate under the secure store:
// one table of opaque byte values addressed by stable string keys.
package kv

import "context"

// Repository stores opaque values by key. Get returns (nil, nil) when the
// key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
