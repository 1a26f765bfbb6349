// Package kv provides the durable key-value stores that hold persisted
// session state.
package kv

import "context"

// Store is a string-keyed byte store. Get reports found=false for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
