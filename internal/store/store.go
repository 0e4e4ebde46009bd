package store

import "context"

// Store is the durable key-value contract the chat core persists through.
// Values are opaque byte payloads; callers own the serialization. Reads of an
// absent key return ErrNotFound so callers can substitute their empty default.
type Store interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key. Total-overwrite semantics,
	// no partial merge.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
