package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/phonecore/phonecore/internal/storage"
)

const settingsFile = "settings.yaml"

// Settings is a persistent key/value store for application settings.
// Every change is written to disk immediately.
type Settings struct {
	path   string
	files  *storage.FileService
	mu     sync.Mutex
	values map[string]any
}

// OpenSettings loads the settings stored at path.
// A missing file yields an empty store.
func OpenSettings(path string) (*Settings, error) {
	s := &Settings{path: path, files: storage.New(""), values: make(map[string]any)}

	data, err := s.files.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// OpenDefaultSettings loads settings.yaml from the config directory.
func OpenDefaultSettings() (*Settings, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return OpenSettings(filepath.Join(dir, settingsFile))
}

// Path returns the backing file
func (s *Settings) Path() string {
	return s.path
}

// Save stores a copy of value under key. value must be YAML-serializable;
// later changes to value by the caller are not seen by the store.
func (s *Settings) Save(key string, value any) error {
	stored, err := snapshotValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.values[key]
	s.values[key] = stored
	if err := s.persist(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Load decodes the value stored under key into out.
// It returns false, leaving out untouched, when the key is missing.
func (s *Settings) Load(key string, out any) (bool, error) {
	s.mu.Lock()
	value, ok := s.values[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}

	// round-trip through YAML so values read back from disk decode
	// into the same types they were saved from
	data, err := yaml.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return true, nil
}

// Exists reports whether key is set
func (s *Settings) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// Remove deletes key
func (s *Settings) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.values[key]
	if !ok {
		return nil
	}
	delete(s.values, key)
	if err := s.persist(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// Keys returns all keys in sorted order
func (s *Settings) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes every setting
func (s *Settings) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.values
	s.values = make(map[string]any)
	if err := s.persist(); err != nil {
		s.values = prev
		return err
	}
	return nil
}

func (s *Settings) persist() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return s.files.SaveText(s.path, string(data))
}

// snapshotValue converts value into the plain YAML form it has once read
// back from disk, detaching it from any caller-owned maps or slices.
func snapshotValue(value any) (any, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
