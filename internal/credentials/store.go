// Package credentials keeps the TMDB API key out of the preference config.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Service is the fixed key the TMDB API key is stored under
const Service = "tmdb_api_key"

// EnvAPIKey overrides the stored key when set
const EnvAPIKey = "TMDB_API_KEY"

// ErrNotFound is returned when no key has been stored
var ErrNotFound = errors.New("credential not found")

// Store defines how the API key is saved and retrieved
type Store interface {
	Get() (string, error)
	Set(value string) error
	Clear() error
}

// FileStore implements Store with a JSON file readable only by its owner
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt credentials file: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Get returns the stored key or ErrNotFound
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	value, ok := entries[Service]
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores the key, trimmed; an empty key clears it
func (s *FileStore) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[Service] = value
	return s.save(entries)
}

// Clear removes the key
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[Service]; !ok {
		return nil
	}
	delete(entries, Service)
	return s.save(entries)
}

// Resolve returns the API key from the environment, falling back to the store
func Resolve(store Store) (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	return store.Get()
}
