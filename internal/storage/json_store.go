package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileContents struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// JSONStore keeps values in a single JSON file readable only by the owner.
type JSONStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init creates the parent directory and loads any existing file.
func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	for k, v := range contents.Values {
		s.values[k] = v
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *JSONStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		return fmt.Errorf("session file not initialized")
	}
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.save(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.values[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.values, key)
	if err := s.save(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

func (s *JSONStore) Describe() string {
	return "file:" + s.path
}

// save replaces the file atomically via a temp file and rename.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(fileContents{Version: 1, Values: s.values}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
