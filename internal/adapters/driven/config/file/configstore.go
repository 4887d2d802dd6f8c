// Package file implements the settings store on a TOML file. Settings
// cover the pipeline's tunables (page sizes, delays, the early-exit
// ratio); credentials stay in the environment and never touch this file.
package file

import (
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using
// TOML. Nested tables are flattened into dot-notation keys, so
// [congress] page_size = 20 is read as "congress.page_size".
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore loads settings from path. A missing file is fine; every
// lookup then falls back to its default. Defaults to "statepulse.toml"
// in the working directory when path is empty.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = "statepulse.toml"
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string value, or fallback.
func (s *ConfigStore) GetString(key, fallback string) string {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}
	str, ok := val.(string)
	if !ok {
		return fallback
	}
	return str
}

// GetInt retrieves an integer value, or fallback.
func (s *ConfigStore) GetInt(key string, fallback int) int {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// GetFloat retrieves a float value, or fallback. TOML integers are
// accepted where a float is expected.
func (s *ConfigStore) GetFloat(key string, fallback float64) float64 {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}

	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// GetBool retrieves a boolean value, or fallback.
func (s *ConfigStore) GetBool(key string, fallback bool) bool {
	val, ok := s.Get(key)
	if !ok {
		return fallback
	}
	b, ok := val.(bool)
	if !ok {
		return fallback
	}
	return b
}

// GetStringSlice retrieves a string slice value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	// TOML arrays are parsed as []any
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// load reads the TOML file into the flattened key map.
func (s *ConfigStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
