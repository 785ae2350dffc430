package store

import "context"

// RegistryKey holds the entire persisted queue list as one document.
const RegistryKey = "queue_configs"

// Store is an opaque key to string value persistence adapter. The engine
// loads once at startup and overwrites the whole document on every mutation.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
