package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/storage"
)

// ErrKeyringUnavailable is returned when the OS keyring cannot be used
var ErrKeyringUnavailable = errors.New("OS keyring is not available")

// Store is a storage.Provider that keeps each key as a separate secret in the
// OS keyring under the application's service name.
type Store struct {
	service string
}

// NewStore returns a keyring-backed store for the application.
func NewStore() *Store {
	return &Store{service: constants.AppName}
}

// Init verifies that the keyring can be reached.
func (s *Store) Init() error {
	if !IsAvailable() {
		return ErrKeyringUnavailable
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Get(key string) (string, error) {
	v, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store empty value for %q", key)
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to store %q in keyring: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if err := keyring.Delete(s.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to delete %q from keyring: %w", key, err)
	}
	return nil
}

func (s *Store) Describe() string {
	return "keyring:" + s.service
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
