package storage

import "errors"

// ErrNotFound is returned by Get and Delete when the key has no value.
var ErrNotFound = errors.New("key not found")

// Provider is a small key/value store for client-side session state.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Values
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error

	// Describe names the backend and its location for diagnostics.
	Describe() string
}
