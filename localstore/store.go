// Package localstore provides the on-device persistence capability the
// offline event queue writes through. It is a deliberately narrow
// key-value surface so the queue logic stays independent of the storage
// medium: production uses the sqlite-backed store, tests inject the
// in-memory one.
package localstore

// Store is a durable string-keyed byte store. Get reports whether the key
// exists; a missing key is not an error.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}
