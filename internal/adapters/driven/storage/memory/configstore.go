package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore using
// the same dot-notation keys as the file-backed store.
type ConfigStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewConfigStore creates an in-memory config store seeded with the given
// dot-notation values.
func NewConfigStore(seed map[string]any) *ConfigStore {
	data := make(map[string]any, len(seed))
	for k, v := range seed {
		data[k] = v
	}
	return &ConfigStore{data: data}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := val.(bool)
	return b
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// PluginSection returns the flat option map for one plugin.
func (s *ConfigStore) PluginSection(name string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := "plugins." + name + "."
	section := make(map[string]string)
	for key, val := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		section[strings.TrimPrefix(key, prefix)] = fmt.Sprintf("%v", val)
	}
	return section
}

// Load is a no-op for the in-memory store.
func (s *ConfigStore) Load() error { return nil }

// Path returns an empty path for the in-memory store.
func (s *ConfigStore) Path() string { return "" }
