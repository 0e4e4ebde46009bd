package store

import "errors"

// Common errors for store operations.
var (
	ErrInvalidConfig    = errors.New("invalid store configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrNotFound         = errors.New("key not found")
)
