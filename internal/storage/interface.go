package storage

// Backend is a raw byte-oriented key-value store. Values are opaque to the
// backend; envelope encoding and integrity checks live above this layer.
type Backend interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Keys
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// SetBatch writes every entry or none of them.
	SetBatch(entries map[string][]byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Clear() error

	// Utils
	GetConfigPath() string
}
