// Package storage persists JSON values under string keys.
//
// Store is the raw byte port implemented by the backends in the
// subpackages. JSON wraps a Store and never fails: reads fall back to a
// default value and write failures are logged. The in-memory state of the
// caller stays authoritative.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"streamtally/internal/log"
)

// ErrNotFound is returned by Store.Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a key-value backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// JSON reads and writes values of type T as JSON documents.
type JSON[T any] struct {
	store  Store
	logger *log.Logger
}

func NewJSON[T any](store Store, logger *log.Logger) *JSON[T] {
	if logger == nil {
		logger = log.Discard()
	}
	return &JSON[T]{store: store, logger: logger.WithComponent(log.ComponentStorage)}
}

// Read returns the value stored under key, or def if the key is missing,
// the backend fails or the stored bytes do not decode.
func (j *JSON[T]) Read(ctx context.Context, key string, def T) T {
	raw, err := j.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to read stored value",
			log.FieldStoreKey, key, log.FieldOperation, log.OpRead, log.FieldError, err)
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		j.logger.WarnContext(ctx, "Stored value is not valid JSON, using default",
			log.FieldStoreKey, key, log.FieldOperation, log.OpRead, log.FieldError, err)
		return def
	}
	return v
}

// Write stores v under key. Failures are logged and reported as false.
func (j *JSON[T]) Write(ctx context.Context, key string, v T) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to encode value",
			log.FieldStoreKey, key, log.FieldOperation, log.OpWrite, log.FieldError, err)
		return false
	}
	if err := j.store.Put(ctx, key, raw); err != nil {
		j.logger.ErrorContext(ctx, "Failed to write value",
			log.FieldStoreKey, key, log.FieldOperation, log.OpWrite, log.FieldError, err)
		return false
	}
	return true
}

// Ping reports whether store can serve a read of key. A missing key
// counts as reachable.
func Ping(ctx context.Context, store Store, key string) error {
	if _, err := store.Get(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
